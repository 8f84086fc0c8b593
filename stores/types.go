package stores

import "github.com/MrEthical07/backoffice/api"

// Audit fields shared by most backend records.
type Audit struct {
	CreatedAt api.Timestamp `json:"createdAt"`
	UpdatedAt api.Timestamp `json:"updatedAt"`
	CreatedBy string        `json:"createdBy"`
	UpdatedBy string        `json:"updatedBy"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// NewUser is the body of a user registration.
type NewUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// RegisteredUser is what the backend returns for a created user.
type RegisteredUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RoleInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	No             string        `json:"no"`
	Bank           string        `json:"bank"`
	Balance        float64       `json:"balance"`
	AccountBalance float64       `json:"accountBalance"`
	AdminFee       float64       `json:"adminFee"`
	InterestRate   float64       `json:"interestRate"`
	LastUpdated    api.Timestamp `json:"lastUpdated"`
}

type Client struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	Audit
}

// ClientRequest updates a client. ID selects the record.
type ClientRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

type Vendor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Service     string `json:"service"`
	Description string `json:"description"`
	Audit
}

// VendorRequest adds or updates a vendor. ID is required for updates only.
type VendorRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Service     string `json:"service"`
	Description string `json:"description"`
}

type Item struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Status       string  `json:"status"`
	Audit
}

type ItemRequest struct {
	Title        string  `json:"title"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
}

type ItemStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Named is an id/name lookup entry: item categories, transaction categories,
// work experience categories.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Audit
}

type CategoryRequest struct {
	Name string `json:"name"`
}

// TransactionKind selects the ledger side of a new transaction.
type TransactionKind string

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

type TransactionRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Account     string  `json:"account"`
	Category    string  `json:"category"`
	IsAdmin     bool    `json:"isAdmin"`
	IsInterest  bool    `json:"isInterest"`
}

type Transaction struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Amount      float64       `json:"amount"`
	Description string        `json:"description"`
	Account     string        `json:"account"`
	Category    string        `json:"category"`
	IsAdmin     bool          `json:"isAdmin"`
	IsInterest  bool          `json:"isInterest"`
	Date        api.Timestamp `json:"date"`
	Audit
}

type BankBalance struct {
	Bank    string  `json:"bank"`
	Balance float64 `json:"balance"`
}

type CashFlowPoint struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type PurchaseOrderItem struct {
	ID           int64   `json:"id,omitempty"`
	TempID       string  `json:"tempId,omitempty"`
	Title        string  `json:"title"`
	Volume       float64 `json:"volume"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Description  string  `json:"description"`
	Sum          float64 `json:"sum"`
}

type PurchaseOrder struct {
	ID             int64               `json:"id,omitempty"`
	CompanyName    string              `json:"companyName"`
	CompanyAddress string              `json:"companyAddress"`
	Receiver       string              `json:"receiver"`
	Items          []PurchaseOrderItem `json:"items"`
	Terms          string              `json:"terms"`
	PlaceSigned    string              `json:"placeSigned"`
	DateCreated    string              `json:"dateCreated"`
	DateSigned     string              `json:"dateSigned"`
	Signee         string              `json:"signee"`
	NoPO           string              `json:"noPo"`
}

// Document is a generated file shipped as base64 inside an envelope.
type Document struct {
	PDF      string `json:"pdf"`
	FileName string `json:"fileName"`
}

type Invoice struct {
	ID              int64   `json:"id,omitempty"`
	Receiver        string  `json:"receiver"`
	PlaceSigned     string  `json:"placeSigned"`
	DateCreated     string  `json:"dateCreated"`
	DateSigned      string  `json:"dateSigned"`
	Signee          string  `json:"signee"`
	PurchaseOrderID int64   `json:"purchaseOrderId"`
	DatePaid        string  `json:"datePaid"`
	PPNPercentage   float64 `json:"ppnPercentage"`
	BankName        string  `json:"bankName"`
	AccountNumber   string  `json:"accountNumber"`
	OnBehalf        string  `json:"onBehalf"`
	Event           string  `json:"event"`
	NoPO            string  `json:"noPo"`
	NoInvoice       string  `json:"noInvoice"`
}

type FinalReport struct {
	ID        int64  `json:"id"`
	Event     string `json:"event"`
	EventDate string `json:"eventDate"`
	Company   string `json:"company"`
}

// FinalReportRequest is sent as multipart form fields plus optional attachments.
type FinalReportRequest struct {
	Event       string
	Date        string
	Company     string
	Attachments []api.FormFile
}

type WorkExperience struct {
	TempID         string `json:"tempId,omitempty"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	IsStillWorking bool   `json:"isStillWorking"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

type FreelancerRequest struct {
	NewUser
	Email           string           `json:"email"`
	Address         string           `json:"address"`
	PhoneNumber     string           `json:"phoneNumber"`
	PlaceOfBirth    string           `json:"placeOfBirth"`
	DateOfBirth     string           `json:"dateOfBirth"`
	Education       string           `json:"education"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	Reason          string           `json:"reason"`
	NIK             string           `json:"nik"`
}

type Freelancer struct {
	RegisteredUser
	Education       string           `json:"education"`
	Reason          string           `json:"reason"`
	IsWorking       bool             `json:"isWorking"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
}

type Profile struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Address      string `json:"address,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	PlaceOfBirth string `json:"placeOfBirth,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Role         string `json:"role,omitempty"`
}
