package models

// Couple is a pairing session. Only user1 filled means a solo session, which is
// a valid terminal state. Connected is true iff both member slots are filled.
type Couple struct {
	CoupleID    string `dynamodbav:"coupleId" json:"coupleId"`           // Partition Key (PK), "couple_<CODE>_<unixms>"
	Code        string `dynamodbav:"code,omitempty" json:"code,omitempty"` // Join code, queried via CodeIndex GSI
	User1ID     string `dynamodbav:"user1Id" json:"user1Id"`
	User1Name   string `dynamodbav:"user1Name,omitempty" json:"user1Name,omitempty"`
	User1Photo  string `dynamodbav:"user1Photo,omitempty" json:"user1Photo,omitempty"`
	User2ID     string `dynamodbav:"user2Id,omitempty" json:"user2Id,omitempty"`
	User2Name   string `dynamodbav:"user2Name,omitempty" json:"user2Name,omitempty"`
	User2Photo  string `dynamodbav:"user2Photo,omitempty" json:"user2Photo,omitempty"`
	Connected   bool   `dynamodbav:"connected" json:"connected"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	ConnectedAt string `dynamodbav:"connectedAt,omitempty" json:"connectedAt,omitempty"`
}

// CoupleCodeIndex is the GSI used for join-by-code lookups.
const CoupleCodeIndex = "CodeIndex"

// HasMember reports whether the given account occupies one of the two slots.
func (c Couple) HasMember(accountID string) bool {
	return accountID != "" && (c.User1ID == accountID || c.User2ID == accountID)
}

// PartnerOf returns the other member's summary, or nil when the couple has no
// second member or the given account is not a member.
func (c Couple) PartnerOf(accountID string) *PartnerSummary {
	switch accountID {
	case c.User1ID:
		if c.User2ID == "" {
			return nil
		}
		return &PartnerSummary{AccountID: c.User2ID, Name: c.User2Name, PhotoURL: c.User2Photo}
	case c.User2ID:
		return &PartnerSummary{AccountID: c.User1ID, Name: c.User1Name, PhotoURL: c.User1Photo}
	default:
		return nil
	}
}

// PartnerSummary is the slice of a partner's profile exposed to the other side.
type PartnerSummary struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	PhotoURL  string `json:"photoURL,omitempty"`
}

// TableName returns the DynamoDB table name for the Couple model
func (Couple) TableName() string {
	return "Couples"
}
