package types

type RunMode string

const (
	// ModeLocal runs the API server locally
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server behind a regular listener
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI runs the API server in AWS Lambda behind API Gateway
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
