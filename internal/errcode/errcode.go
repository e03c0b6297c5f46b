package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：业务可恢复/告警类错误（例如资源缺失但流程可继续）
// - 5xxx：系统错误（需要中断流程）
const (
	OK                   = 0
	InvalidRequest       = 4000
	Unauthorized         = 4010
	ResourceMissing      = 4004
	ValidationFailed     = 4220
	ConfirmationRequired = 4280
	RateLimited          = 4290
	DraftQuotaExceeded   = 4130
	SystemError          = 5000
	DraftSaveFailed      = 5001
	StoreNotConfigured   = 5030
	StorageNotConfigured = 5031
)
