package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodeRunInProgress    = 1004
	CodeDuplicateAction  = 1005
	CodeServerError      = 5000
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:          "success",
	CodeParamError:       "参数错误",
	CodeAuthFailed:       "认证失败",
	CodePermissionDenied: "权限不足",
	CodeResourceNotFound: "资源不存在",
	CodeRunInProgress:    "任务正在执行",
	CodeDuplicateAction:  "重复操作",
	CodeServerError:      "服务器内部错误",
}

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ListData 列表数据结构
type ListData struct {
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

func write(c *gin.Context, code int, message string, data interface{}) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(http.StatusOK, Response{Code: code, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	write(c, CodeSuccess, "", data)
}

// SuccessWithMessage 带提示的成功响应，例如提醒已发出但记录未保存
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, CodeSuccess, message, data)
}

func SuccessList(c *gin.Context, count int, items interface{}) {
	write(c, CodeSuccess, "", ListData{Count: count, Items: items})
}

// Error message 为空时使用错误码的默认消息
func Error(c *gin.Context, code int, message string) {
	write(c, code, message, nil)
}

func ParamError(c *gin.Context, message string)      { Error(c, CodeParamError, message) }
func AuthError(c *gin.Context, message string)       { Error(c, CodeAuthFailed, message) }
func PermissionError(c *gin.Context, message string) { Error(c, CodePermissionDenied, message) }
func NotFoundError(c *gin.Context, message string)   { Error(c, CodeResourceNotFound, message) }
func DuplicateError(c *gin.Context, message string)  { Error(c, CodeDuplicateAction, message) }
func ServerError(c *gin.Context, message string)     { Error(c, CodeServerError, message) }

// ConflictError 同一渠道的提醒任务正在执行
func ConflictError(c *gin.Context, message string) { Error(c, CodeRunInProgress, message) }
