package errors

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

func (d Definition) Error() string {
	return d.Message
}

// 输入校验错误。
var (
	InvalidInput     = Definition{Code: "INVALID_INPUT", Message: "Invalid input"}
	InvalidTimestamp = Definition{Code: "INVALID_INPUT", Message: "Time must be a valid ISO-8601 timestamp"}
	InvalidLimit     = Definition{Code: "INVALID_INPUT", Message: "Limit must be a positive integer"}
)

// 认证相关错误。
// VerificationUnavailable 与 InvalidCredential 语义不同：前者是密钥集拉取失败，
// 凭证本身可能是合法的，不能向客户端混为一谈。
var (
	Unauthorized            = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidCredential       = Definition{Code: "INVALID_CREDENTIAL", Message: "Credential verification failed"}
	VerificationUnavailable = Definition{Code: "VERIFICATION_UNAVAILABLE", Message: "Credential verification temporarily unavailable"}
)

// 打卡生命周期错误。
var (
	NoOpenPunch      = Definition{Code: "NO_OPEN_PUNCH", Message: "No open punch-in to close"}
	PunchAlreadyOpen = Definition{Code: "PUNCH_ALREADY_OPEN", Message: "An open punch-in already exists"}
	PunchOutDisabled = Definition{Code: "PUNCH_OUT_DISABLED", Message: "Punch-out is not available in single-punch mode"}
)

// 依赖故障错误。
var (
	StoreUnavailable = Definition{Code: "STORE_UNAVAILABLE", Message: "Failed to access punch store"}
	TooManyRequests  = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidInput.Code:            InvalidInput,
	Unauthorized.Code:            Unauthorized,
	InvalidCredential.Code:       InvalidCredential,
	VerificationUnavailable.Code: VerificationUnavailable,
	NoOpenPunch.Code:             NoOpenPunch,
	PunchAlreadyOpen.Code:        PunchAlreadyOpen,
	PunchOutDisabled.Code:        PunchOutDisabled,
	StoreUnavailable.Code:        StoreUnavailable,
	TooManyRequests.Code:         TooManyRequests,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
