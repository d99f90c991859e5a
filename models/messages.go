package models

type Message struct {
	ChatID    string `dynamodbav:"chatId" json:"chatId"` // Partition key
	SortKey   string `dynamodbav:"sk" json:"-"`          // createdAt#messageId, keeps same-instant sends distinct
	MessageID string `dynamodbav:"messageId" json:"messageId"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	Text      string `dynamodbav:"text" json:"text"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
	Read      bool   `dynamodbav:"read" json:"read"`
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
