// Ranking HTTP handlers.
//
// Ranking pages carry a weak ETag derived from the eligible question count
// and the newest update among them, so a client polling an unchanged ranking
// gets 304 without the list being rebuilt.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/http/middleware"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
)

// RankPopular godoc
// @ID          rankPopular
// @Summary     Most upvoted questions
// @Tags        Rankings
// @Produce     json
//
// @Param       X-User-ID      header  integer  false "Caller id (admins also see hidden questions)"
// @Param       If-None-Match  header  string   false "Return 304 if ETag matches"
// @Param       page           query   int      false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int      false "Items per page"  minimum(1) maximum(100) default(5)
//
// @Success     200  {object}  services.Page
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /questions/popular [get]
func (h *Handlers) RankPopular(c *gin.Context) { h.rank(c, repo.RankPopular) }

// RankControversial godoc
// @ID          rankControversial
// @Summary     Most controversial questions (downvotes minus upvotes)
// @Tags        Rankings
// @Produce     json
//
// @Param       X-User-ID      header  integer  false "Caller id"
// @Param       If-None-Match  header  string   false "Return 304 if ETag matches"
// @Param       page           query   int      false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int      false "Items per page"  minimum(1) maximum(100) default(5)
//
// @Success     200  {object}  services.Page
// @Success     304  {string}  string "Not Modified"
// @Router      /questions/controversial [get]
func (h *Handlers) RankControversial(c *gin.Context) { h.rank(c, repo.RankControversial) }

// RankRecent godoc
// @ID          rankRecent
// @Summary     Newest questions
// @Tags        Rankings
// @Produce     json
//
// @Param       X-User-ID      header  integer  false "Caller id"
// @Param       If-None-Match  header  string   false "Return 304 if ETag matches"
// @Param       page           query   int      false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int      false "Items per page"  minimum(1) maximum(100) default(5)
//
// @Success     200  {object}  services.Page
// @Success     304  {string}  string "Not Modified"
// @Router      /questions/recent [get]
func (h *Handlers) RankRecent(c *gin.Context) { h.rank(c, repo.RankRecent) }

func (h *Handlers) rank(c *gin.Context, r repo.Ranking) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	page, pageSize := clampPagination(c, 0)

	// ETag pre-check (best effort).
	if svc, okSvc := h.rankings.(*services.RankingService); okSvc && svc.DB != nil {
		if hidden, err := svc.IncludesHidden(ctx, uid); err == nil {
			if count, maxTS, err := repo.RankingStats(ctx, svc.DB, hidden); err == nil {
				var ts int64
				if maxTS != nil {
					ts = maxTS.UnixNano()
				}
				etag := fmt.Sprintf(`W/"%s:%t:%d:%d:%d:%d"`, r, hidden, count, ts, page, pageSize)
				if notModified(c, etag) {
					return
				}
			}
		}
	}

	p, err := h.rankings.Rank(ctx, uid, r, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// Home godoc
// @ID          home
// @Summary     Landing page
// @Description First page of the popular, controversial and recent rankings.
// @Tags        Rankings
// @Produce     json
//
// @Param       X-User-ID  header  integer  false "Caller id"
//
// @Success     200  {object}  services.Home
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /home [get]
func (h *Handlers) Home(c *gin.Context) {
	home, err := h.rankings.Home(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, home)
}
