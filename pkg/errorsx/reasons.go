package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonToolRegister ReasonCode = "tool_register"
	ReasonToolResolve  ReasonCode = "tool_resolve"
	ReasonToolExecute  ReasonCode = "tool_execute"
	ReasonToolParams   ReasonCode = "tool_params"

	ReasonPlanExtract ReasonCode = "plan_extract"
	ReasonPlanDecode  ReasonCode = "plan_decode"

	ReasonLLMGenerate  ReasonCode = "llm_generate"
	ReasonLLMRateLimit ReasonCode = "llm_rate_limit"

	ReasonConfigLoad     ReasonCode = "config_load"
	ReasonConfigValidate ReasonCode = "config_validate"
)
