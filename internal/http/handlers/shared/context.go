package shared

import (
	"strings"

	"github.com/promo-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const customerIDHeader = "X-Customer-ID"

// GetCustomerID 提取调用方客户标识。
// 优先读取 X-Customer-ID 请求头，兼容 customer_id 查询参数。
// 客户标识是外部系统下发的不透明字符串，这里不做格式校验。
func GetCustomerID(c *gin.Context) (string, bool) {
	customerID := strings.TrimSpace(c.GetHeader(customerIDHeader))
	if customerID == "" {
		customerID = strings.TrimSpace(c.Query("customer_id"))
	}
	if customerID == "" {
		RespondError(c, response.CodeBadRequest, "error.customer_id_required", nil)
		return "", false
	}
	return customerID, true
}
