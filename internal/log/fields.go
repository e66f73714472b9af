package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldOperation = "operation"
	FieldSource    = "source"
	FieldRows      = "rows"
	FieldCards     = "cards"
	FieldBank      = "bank"
	FieldMode      = "mode"
	FieldAmount    = "amount"
	FieldLeftover  = "leftover"
	FieldShortfall = "shortfall"
	FieldDuration  = "duration_ms"
	FieldExchange  = "exchange"
	FieldSections  = "sections"
)

// Components
const (
	ComponentApp      = "app"
	ComponentAdvisor  = "advisor"
	ComponentStore    = "store"
	ComponentPipeline = "pipeline"
	ComponentPublish  = "publish"
	ComponentDaemon   = "daemon"
)

// Operations
const (
	OpListUsage    = "list_usage"
	OpListBalances = "list_balances"
	OpSnapshot     = "snapshot"
	OpDistribute   = "distribute"
	OpPublish      = "publish"
)
