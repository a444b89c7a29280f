package httpserver

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// applyCORS 写入 CORS 响应头
//
// Allow-Methods / Allow-Headers 总是返回；Allow-Origin 只回给受信任的来源。
func applyCORS(c *fiber.Ctx, trustedDomain string) {
	origin := c.Get(fiber.HeaderOrigin)
	if isTrustedOrigin(origin, trustedDomain) {
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Vary(fiber.HeaderOrigin)
	}
	c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
}

// isTrustedOrigin 来源为 https://<domain> 或主机名是 <domain> 的子域名
// 空的或无法解析的来源一律视为不受信任
func isTrustedOrigin(origin, domain string) bool {
	if origin == "" || domain == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if origin == "https://"+domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}
