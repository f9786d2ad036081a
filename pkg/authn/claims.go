package authn

// Claims 是验证通过后的 claim 名到值的映射
type Claims map[string]interface{}

// Subject 按优先级列表解析稳定的 subject 标识，首个非空字符串胜出。
// 优先级列表由配置驱动（如 preferred_username,upn,email,oid,sub），而不是写死的级联判断。
func (c Claims) Subject(priority []string) (string, bool) {
	for _, name := range priority {
		if v, ok := c[name].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
