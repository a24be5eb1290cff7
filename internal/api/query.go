package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"pagexpress/internal/store"
)

// listQuery — GET /component-patterns. page/limit приводятся к границам
// хранилищем, sort проверяется здесь.
type listQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search" binding:"max=100"`
	Sort   string `form:"sort" binding:"omitempty,oneof=name -name label -label createdAt -createdAt updatedAt -updatedAt"`
}

func (q listQuery) params() store.ListParams {
	return store.ListParams{Page: q.Page, Limit: q.Limit, Search: q.Search, Sort: q.Sort}
}

type getQuery struct {
	PlainData bool `form:"plainData"`
}

// bindErrors переводит ошибки binding/validator в FieldError.
func bindErrors(err error) []FieldError {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]FieldError, 0, len(ves))
		for _, fe := range ves {
			field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
			out = append(out, ferr(ErrInvalid, field, field+" failed "+fe.Tag()+" check"))
		}
		return out
	}
	return []FieldError{ferr(ErrInvalid, "query", err.Error())}
}

// readExpectedVersion читает ожидаемую версию из If-Match ("3", W/"3") либо из тела.
// 0 — проверки нет; ok=false — If-Match есть, но это не версия.
func readExpectedVersion(c *gin.Context, bodyVersion int64) (int64, bool) {
	ifMatch := strings.TrimSpace(c.GetHeader("If-Match"))
	if ifMatch != "" {
		ifMatch = strings.TrimPrefix(ifMatch, "W/")
		ifMatch = strings.Trim(ifMatch, `"'`)
		v, err := strconv.ParseInt(ifMatch, 10, 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		return v, true
	}
	if bodyVersion > 0 {
		return bodyVersion, true
	}
	return 0, true
}
