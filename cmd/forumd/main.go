// Command forumd runs the forum API server and its maintenance tasks.
//
//	@title			Forum API
//	@version		1.0
//	@description	Q&A forum with drafts, votes, rankings, gated threads and chat invitations.
//	@BasePath		/api/v1
package main

import "github.com/tbourn/go-forum-backend/cmd/forumd/commands"

func main() {
	commands.Execute()
}
