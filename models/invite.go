package models

// Invite is a directed pending request from one account to another to form a
// couple. It is deleted on accept (after producing the couple) or decline and
// never mutated otherwise.
type Invite struct {
	InviteID      string `dynamodbav:"inviteId" json:"inviteId"`           // Partition Key (PK)
	FromAccountID string `dynamodbav:"fromAccountId" json:"fromAccountId"` // Queried via FromAccountIndex GSI
	FromName      string `dynamodbav:"fromName,omitempty" json:"fromName,omitempty"`
	FromPhoto     string `dynamodbav:"fromPhoto,omitempty" json:"fromPhoto,omitempty"`
	ToAccountID   string `dynamodbav:"toAccountId" json:"toAccountId"` // Queried via ToAccountIndex GSI
	Status        string `dynamodbav:"status" json:"status"`           // "pending"
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
}

// Invite GSIs
const (
	InviteToIndex   = "ToAccountIndex"
	InviteFromIndex = "FromAccountIndex"
)

// TableName returns the DynamoDB table name for the Invite model
func (Invite) TableName() string {
	return "Invites"
}
