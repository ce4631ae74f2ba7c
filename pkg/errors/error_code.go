package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidVersion       ErrorCode = 103

	// Graph errors (200-299)
	ErrCodeDuplicateNode    ErrorCode = 200
	ErrCodeUnknownNodeKind  ErrorCode = 201
	ErrCodeGraphCycle       ErrorCode = 202
	ErrCodeGraphParseFailed ErrorCode = 203
	ErrCodeVersionMismatch  ErrorCode = 204

	// Node evaluation errors (300-399)
	ErrCodeUnknownNode       ErrorCode = 300
	ErrCodeInvalidNodeConfig ErrorCode = 301
	ErrCodeMissingMetric     ErrorCode = 302
	ErrCodeEvaluationFailed  ErrorCode = 303
	ErrCodeEvaluatorExists   ErrorCode = 304

	// Simulation errors (400-499)
	ErrCodeSimulationCancelled ErrorCode = 400
	ErrCodeSimulationFailed    ErrorCode = 401

	// Synthetic data errors (500-599)
	ErrCodeUnknownScenario ErrorCode = 500
	ErrCodeInvalidLength   ErrorCode = 501

	// Data/Resource errors (600-699)
	ErrCodeDataNotFound          ErrorCode = 600
	ErrCodeDataSourceUnavailable ErrorCode = 601
	ErrCodeQueryFailed           ErrorCode = 602
	ErrCodeWriteFailed           ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeInvalidTimespan       ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703
)

// Category groups error codes by the layer that raises them.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryValidation Category = "validation"
	CategoryGraph      Category = "graph"
	CategoryNode       Category = "node"
	CategorySimulation Category = "simulation"
	CategorySynthetic  Category = "synthetic"
	CategoryData       Category = "data"
	CategoryMarketData Category = "market_data"
)

// Category derives the category from the hundreds digit of the code.
func (c ErrorCode) Category() Category {
	switch c / 100 {
	case 1:
		return CategoryValidation
	case 2:
		return CategoryGraph
	case 3:
		return CategoryNode
	case 4:
		return CategorySimulation
	case 5:
		return CategorySynthetic
	case 6:
		return CategoryData
	case 7:
		return CategoryMarketData
	default:
		return CategoryGeneral
	}
}
