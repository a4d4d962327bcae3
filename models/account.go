package models

// Account holds one authenticated user's profile and their current couple link.
// The identity fields (accountId, email, name, photoURL) come from the identity
// provider and are stored as-is.
type Account struct {
	AccountID   string `dynamodbav:"accountId" json:"accountId"` // Partition Key (PK)
	Email       string `dynamodbav:"email" json:"email"`         // Queried via EmailIndex GSI
	Name        string `dynamodbav:"name" json:"name"`
	PhotoURL    string `dynamodbav:"photoURL,omitempty" json:"photoURL,omitempty"`
	CoupleID    string `dynamodbav:"coupleId,omitempty" json:"coupleId,omitempty"` // Empty when unpaired
	IsAdmin     bool   `dynamodbav:"isAdmin,omitempty" json:"isAdmin,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	LastLoginAt string `dynamodbav:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

// AccountEmailIndex is the GSI used for lookup-by-email when sending invites.
const AccountEmailIndex = "EmailIndex"

// TableName returns the DynamoDB table name for the Account model
func (Account) TableName() string {
	return "Accounts"
}
