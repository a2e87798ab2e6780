package rekognition

// Config holds configuration for AWS Rekognition provider
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// MaxAttempts bounds the SDK's retryer, including the first call
	MaxAttempts int

	// MinFaceConfidence skips faces Rekognition is less sure about (0-100)
	MinFaceConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:            "us-east-1",
		MaxAttempts:       3,
		MinFaceConfidence: 50,
	}
}
