package utils

import (
	"github.com/kataras/iris/v12"
)

type PageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// JSONPage writes a paginated list response.
func JSONPage(ctx iris.Context, data interface{}, page, pageSize int, total int64) {
	ctx.JSON(iris.Map{
		"data": data,
		"meta": PageMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().
		Title(title).Detail(detail))
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "resource not found", ctx)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "an internal server error occurred", ctx)
}

// CreateFieldErrors writes per-field validation failures in the shape the
// frontend consumes: {"success": false, "errors": {field: message}}.
func CreateFieldErrors(ctx iris.Context, status int, errs map[string]string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"success": false, "errors": errs})
}
