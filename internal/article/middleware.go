package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/go-chi/chi/v5"
)

type ctxKey struct{}

// ArticleCtx middleware is used to load an Article, with its author and
// comments, from the articleID URL parameter. In case the Article could not
// be found, we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "articleID"), 10, 64)
		if err != nil || id == 0 {
			errresponse.Respond(w, r, errresponse.ErrNotFound)

			return
		}

		article, err := a.service.Get(r.Context(), uint(id))
		if err != nil {
			errresponse.RespondErr(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithArticle(r.Context(), article)))
	})
}

func WithArticle(ctx context.Context, article *model.Article) context.Context {
	return context.WithValue(ctx, ctxKey{}, article)
}

// FromContext returns the article loaded by ArticleCtx. Handlers mounted
// under ArticleCtx can rely on it being present.
func FromContext(ctx context.Context) *model.Article {
	article, _ := ctx.Value(ctxKey{}).(*model.Article)

	return article
}
