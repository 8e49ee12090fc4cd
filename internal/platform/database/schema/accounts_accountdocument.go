// Copyright (c) 2026 Nomik. All rights reserved.

package schema

// AccountDocumentTable represents the 'accounts.account_document' table
type AccountDocumentTable struct {
	Table      string
	ID         string
	AccountID  string
	Category   string
	Handle     string
	UploadedAt string
}

// AccountDocument is the schema definition for accounts.account_document
var AccountDocument = AccountDocumentTable{
	Table:      "accounts.account_document",
	ID:         "id",
	AccountID:  "accountid",
	Category:   "category",
	Handle:     "handle",
	UploadedAt: "uploadedat",
}

// Columns returns all standard column names
func (t AccountDocumentTable) Columns() []string {
	return []string{t.ID, t.AccountID, t.Category, t.Handle, t.UploadedAt}
}
