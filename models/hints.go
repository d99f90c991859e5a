package models

type Hint struct {
	ToUserID   string `dynamodbav:"toUserId" json:"toUserId"`     // Partition key
	HintID     string `dynamodbav:"hintId" json:"hintId"`         // Sort key
	FromUserID string `dynamodbav:"fromUserId" json:"fromUserId"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	Read       bool   `dynamodbav:"read" json:"read"`
}

// HintsTable is the DynamoDB table name for the hint ledger
const HintsTable = "Hints"
