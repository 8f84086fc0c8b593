package backendtest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"time"

	"github.com/MrEthical07/backoffice/middleware"
	"github.com/MrEthical07/backoffice/permission"
)

const (
	collAccounts     = "accounts"
	collClients      = "clients"
	collVendors      = "vendors"
	collItems        = "items"
	collCategories   = "categories"
	collItemStatuses = "item_statuses"
	collTxCategories = "transaction_categories"
	collTransactions = "transactions"
	collOrders       = "purchase_orders"
	collReports      = "final_reports"
	collWorkCats     = "work_experience_categories"
	collFreelancers  = "freelancers"
)

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	authed := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /freelancer/add", b.addFreelancer)
	mux.HandleFunc("GET /work-experience/category/all", b.listHandler(collWorkCats))

	authed.HandleFunc("POST /user/add", b.addUser)
	authed.HandleFunc("POST /user/get", b.getUser)
	authed.HandleFunc("PUT /user/update-profile", b.updateProfile)
	authed.HandleFunc("GET /role/all", b.listRoles)

	authed.HandleFunc("GET /account/all", b.listHandler(collAccounts))
	authed.HandleFunc("GET /account/{id}", b.getHandler(collAccounts, "Account"))

	authed.HandleFunc("GET /client/viewall", b.listHandler(collClients))
	authed.HandleFunc("GET /client/{id}", b.getHandler(collClients, "Client"))
	authed.HandleFunc("PUT /client/update", b.updateHandler(collClients, "Client"))

	authed.HandleFunc("GET /vendor/viewall", b.listHandler(collVendors))
	authed.HandleFunc("GET /vendor/{id}", b.getHandler(collVendors, "Vendor"))
	authed.HandleFunc("POST /vendor/add", b.createHandler(collVendors, true))
	authed.HandleFunc("PUT /vendor/update", b.updateHandler(collVendors, "Vendor"))
	authed.HandleFunc("PUT /vendor/{id}/delete", b.deleteHandler(collVendors, "Vendor"))

	authed.HandleFunc("POST /item/create", b.createItem)
	authed.HandleFunc("GET /item/all", b.listHandler(collItems))
	authed.HandleFunc("GET /item/status/all", b.listHandler(collItemStatuses))
	authed.HandleFunc("PUT /item/update-status", b.updateItemStatus)
	authed.HandleFunc("GET /category/all", b.listHandler(collCategories))
	authed.HandleFunc("POST /category/add", b.createHandler(collCategories, false))

	authed.HandleFunc("GET /transaction/category/all", b.listHandler(collTxCategories))
	authed.HandleFunc("POST /transaction/{kind}/add", b.addTransaction)
	authed.HandleFunc("POST /transaction/detail", b.transactionDetail)
	authed.HandleFunc("GET /transaction/balance-per-bank", b.balancePerBank)
	authed.HandleFunc("GET /transaction/cash-flow/chart-data", b.cashFlow)

	authed.HandleFunc("POST /purchase-order/create", b.createOrder)
	authed.HandleFunc("GET /purchase-order/all", b.listHandler(collOrders))
	authed.HandleFunc("GET /purchase-order/{id}", b.getHandler(collOrders, "Purchase order"))
	authed.HandleFunc("DELETE /purchase-order/{id}", b.deleteHandler(collOrders, "Purchase order"))
	authed.HandleFunc("GET /purchase-order/{id}/download", b.downloadOrder)

	authed.HandleFunc("POST /invoice/create", b.createInvoice)

	authed.HandleFunc("POST /final-report/create", b.createReport)
	authed.HandleFunc("GET /final-report/all", b.listHandler(collReports))
	authed.HandleFunc("GET /final-report/{id}", b.getHandler(collReports, "Final report"))
	authed.HandleFunc("GET /final-report/{id}/download", b.downloadReport)

	requireBearer := middleware.RequireBearer(b.signer, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "Unauthorized", nil)
	})
	mux.Handle("/", requireBearer(authed))
	return mux
}

func (b *Backend) seed() error {
	if _, err := b.AddUser("Administrator", AdminUsername, string(permission.RoleAdmin), AdminPassword); err != nil {
		return err
	}
	if _, err := b.AddUser("Staff Member", StaffUsername, string(permission.RoleStaff), StaffPassword); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	b.insert(collAccounts, map[string]any{
		"name": "Operational", "no": "0012345678", "bank": "BCA",
		"balance": 1500000.0, "accountBalance": 1500000.0, "adminFee": 2500.0, "interestRate": 0.5, "lastUpdated": now,
	}, true)
	b.insert(collAccounts, map[string]any{
		"name": "Payroll", "no": "1400098765", "bank": "Mandiri",
		"balance": 750000.0, "accountBalance": 750000.0, "adminFee": 5000.0, "interestRate": 0.25, "lastUpdated": now,
	}, true)
	b.insert(collClients, map[string]any{
		"name": "Acme Events", "contact": "0811111111", "email": "hello@acme.example", "address": "Jakarta",
		"industry": "Entertainment", "description": "Concert promoter", "createdAt": now, "createdBy": AdminUsername,
	}, true)
	b.insert(collVendors, map[string]any{
		"name": "Stage Works", "contact": "0822222222", "email": "ops@stage.example", "address": "Bandung",
		"service": "Rigging", "description": "Truss and stage rental", "createdAt": now, "createdBy": AdminUsername,
	}, true)
	for _, name := range []string{"Sound", "Lighting", "Stage"} {
		b.insert(collCategories, map[string]any{"name": name, "createdAt": now, "createdBy": AdminUsername}, false)
	}
	for _, name := range []string{"Available", "In Use", "Maintenance"} {
		b.insert(collItemStatuses, map[string]any{"name": name}, false)
	}
	for _, name := range []string{"Operational", "Salary", "Event"} {
		b.insert(collTxCategories, map[string]any{"name": name}, false)
	}
	for _, name := range []string{"Event Crew", "Production", "Design"} {
		b.insert(collWorkCats, map[string]any{"name": name}, false)
	}
	return nil
}

func (b *Backend) insert(coll string, rec map[string]any, stringID bool) map[string]any {
	rec = maps.Clone(rec)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	if stringID {
		rec["id"] = strconv.FormatInt(b.nextID, 10)
	} else {
		rec["id"] = b.nextID
	}
	b.records[coll] = append(b.records[coll], rec)
	return maps.Clone(rec)
}

func (b *Backend) list(coll string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.records[coll]))
	for _, rec := range b.records[coll] {
		out = append(out, maps.Clone(rec))
	}
	return out
}

func (b *Backend) find(coll, id string) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.records[coll] {
		if fmt.Sprint(rec["id"]) == id {
			return maps.Clone(rec), true
		}
	}
	return nil, false
}

// patch merges fields into the record with id and returns the result.
func (b *Backend) patch(coll, id string, fields map[string]any) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.records[coll] {
		if fmt.Sprint(rec["id"]) != id {
			continue
		}
		for k, v := range fields {
			if k != "id" {
				rec[k] = v
			}
		}
		return maps.Clone(rec), true
	}
	return nil, false
}

func (b *Backend) remove(coll, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	recs := b.records[coll]
	for i, rec := range recs {
		if fmt.Sprint(rec["id"]) == id {
			b.records[coll] = append(recs[:i:i], recs[i+1:]...)
			return true
		}
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

func actor(r *http.Request) string {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id.Subject
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (b *Backend) listHandler(coll string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, "Success", b.list(coll))
	}
}

func (b *Backend) getHandler(coll, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := b.find(coll, r.PathValue("id"))
		if !ok {
			writeEnvelope(w, http.StatusNotFound, label+" not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Success", rec)
	}
}

func (b *Backend) createHandler(coll string, stringID bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if !decodeJSON(w, r, &body) {
			return
		}
		if name, _ := body["name"].(string); name == "" {
			writeEnvelope(w, http.StatusBadRequest, "Name is required", nil)
			return
		}
		delete(body, "id")
		body["createdAt"] = stamp()
		body["createdBy"] = actor(r)
		writeEnvelope(w, http.StatusCreated, "Created", b.insert(coll, body, stringID))
	}
}

func (b *Backend) updateHandler(coll, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if !decodeJSON(w, r, &body) {
			return
		}
		body["updatedAt"] = stamp()
		body["updatedBy"] = actor(r)
		rec, ok := b.patch(coll, fmt.Sprint(body["id"]), body)
		if !ok {
			writeEnvelope(w, http.StatusNotFound, label+" not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Updated", rec)
	}
}

func (b *Backend) deleteHandler(coll, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !b.remove(coll, r.PathValue("id")) {
			writeEnvelope(w, http.StatusNotFound, label+" not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, label+" deleted", nil)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	b.mu.Lock()
	u, ok := b.users[body.Username]
	b.mu.Unlock()
	if ok {
		ok, _ = b.hasher.Verify(body.Password, u.passwordHash)
	}
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, err := b.Token(body.Username)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, "Token issue failed", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Login successful", map[string]any{"token": token})
}

type newUserBody struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (b *Backend) createUser(w http.ResponseWriter, body newUserBody) (int64, bool) {
	if body.Name == "" || body.Username == "" || body.Password == "" {
		writeEnvelope(w, http.StatusBadRequest, "Name, username and password are required", nil)
		return 0, false
	}
	if !permission.ParseRole(body.Role).Known() {
		writeEnvelope(w, http.StatusBadRequest, "Unknown role "+body.Role, nil)
		return 0, false
	}
	if _, exists := b.UserID(body.Username); exists {
		writeEnvelope(w, http.StatusConflict, "Username already exists", nil)
		return 0, false
	}
	id, err := b.AddUser(body.Name, body.Username, body.Role, body.Password)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return 0, false
	}
	return id, true
}

func (b *Backend) addUser(w http.ResponseWriter, r *http.Request) {
	var body newUserBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id, ok := b.createUser(w, body)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusCreated, "User created", map[string]any{
		"id": id, "name": body.Name, "username": body.Username, "role": body.Role,
	})
}

func (b *Backend) profileOf(u *user) map[string]any {
	p := maps.Clone(u.profile)
	p["id"] = u.id
	p["name"] = u.name
	p["role"] = u.role
	return p
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID int64 `json:"id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	out := []map[string]any{}
	b.mu.Lock()
	for _, u := range b.users {
		if u.id == body.ID {
			out = append(out, b.profileOf(u))
		}
	}
	b.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "Success", out)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"userRequestDTO"`
		Profile map[string]any `json:"profileRequestDTO"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.id != body.User.ID {
			continue
		}
		for k, v := range body.Profile {
			switch k {
			case "id", "role":
			case "name":
				if s, ok := v.(string); ok && s != "" {
					u.name = s
				}
			default:
				u.profile[k] = v
			}
		}
		writeEnvelope(w, http.StatusOK, "Profile updated", b.profileOf(u))
		return
	}
	writeEnvelope(w, http.StatusNotFound, "User not found", nil)
}

func (b *Backend) listRoles(w http.ResponseWriter, _ *http.Request) {
	roles := make([]map[string]any, 0, len(permission.KnownRoles))
	for i, role := range permission.KnownRoles {
		if role == permission.RoleGuest {
			continue
		}
		roles = append(roles, map[string]any{"id": i + 1, "name": string(role)})
	}
	writeEnvelope(w, http.StatusOK, "Success", roles)
}

func (b *Backend) createItem(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	if title, _ := body["title"].(string); title == "" {
		writeEnvelope(w, http.StatusBadRequest, "Title is required", nil)
		return
	}
	delete(body, "id")
	body["status"] = "Available"
	body["createdAt"] = stamp()
	body["createdBy"] = actor(r)
	writeEnvelope(w, http.StatusCreated, "Item created", b.insert(collItems, body, false))
}

func (b *Backend) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemID   int64 `json:"itemId"`
		StatusID int64 `json:"idItemStatus"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	status, ok := b.find(collItemStatuses, strconv.FormatInt(body.StatusID, 10))
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, "Unknown item status", nil)
		return
	}
	rec, ok := b.patch(collItems, strconv.FormatInt(body.ItemID, 10), map[string]any{
		"status":    status["name"],
		"updatedAt": stamp(),
		"updatedBy": actor(r),
	})
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Item not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Item status updated", rec)
}

func (b *Backend) addTransaction(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if kind != "income" && kind != "expense" {
		writeEnvelope(w, http.StatusNotFound, "Unknown transaction type", nil)
		return
	}
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	amount, _ := body["amount"].(float64)
	if amount <= 0 {
		writeEnvelope(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}
	account := fmt.Sprint(body["account"])
	acc, ok := b.find(collAccounts, account)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, "Unknown account", nil)
		return
	}

	balance, _ := acc["balance"].(float64)
	if kind == "expense" {
		amount = -amount
	}
	b.patch(collAccounts, account, map[string]any{
		"balance":        balance + amount,
		"accountBalance": balance + amount,
		"lastUpdated":    stamp(),
	})

	delete(body, "id")
	body["type"] = kind
	body["date"] = stamp()
	body["createdAt"] = stamp()
	body["createdBy"] = actor(r)
	writeEnvelope(w, http.StatusCreated, "Transaction recorded", b.insert(collTransactions, body, true))
}

func (b *Backend) transactionDetail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, ok := b.find(collTransactions, body.ID)
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Success", rec)
}

func (b *Backend) balancePerBank(w http.ResponseWriter, _ *http.Request) {
	totals := map[string]float64{}
	var banks []string
	for _, acc := range b.list(collAccounts) {
		bank := fmt.Sprint(acc["bank"])
		if _, seen := totals[bank]; !seen {
			banks = append(banks, bank)
		}
		balance, _ := acc["balance"].(float64)
		totals[bank] += balance
	}
	out := make([]map[string]any, 0, len(banks))
	for _, bank := range banks {
		out = append(out, map[string]any{"bank": bank, "balance": totals[bank]})
	}
	writeEnvelope(w, http.StatusOK, "Success", out)
}

func (b *Backend) cashFlow(w http.ResponseWriter, _ *http.Request) {
	type point struct{ income, expense float64 }
	totals := map[string]*point{}
	var periods []string
	for _, tx := range b.list(collTransactions) {
		period := fmt.Sprint(tx["date"])
		if len(period) >= 7 {
			period = period[:7]
		}
		p, ok := totals[period]
		if !ok {
			p = &point{}
			totals[period] = p
			periods = append(periods, period)
		}
		amount, _ := tx["amount"].(float64)
		if tx["type"] == "expense" {
			p.expense += amount
		} else {
			p.income += amount
		}
	}
	out := make([]map[string]any, 0, len(periods))
	for _, period := range periods {
		out = append(out, map[string]any{"period": period, "income": totals[period].income, "expense": totals[period].expense})
	}
	writeEnvelope(w, http.StatusOK, "Success", out)
}

// FakePDF is the document body served for every generated file.
func FakePDF(title string) []byte {
	return []byte("%PDF-1.4\n% " + title + "\n%%EOF\n")
}

func document(title, fileName string) map[string]any {
	return map[string]any{
		"pdf":      base64.StdEncoding.EncodeToString(FakePDF(title)),
		"fileName": fileName,
	}
}

func (b *Backend) createOrder(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	if items, _ := body["items"].([]any); len(items) == 0 {
		writeEnvelope(w, http.StatusBadRequest, "A purchase order needs at least one item", nil)
		return
	}
	delete(body, "id")
	rec := b.insert(collOrders, body, false)
	writeEnvelope(w, http.StatusCreated, "Purchase order created",
		document(fmt.Sprintf("purchase order %v", rec["id"]), fmt.Sprintf("purchase_order_%v.pdf", rec["id"])))
}

// downloadOrder leaves the file name empty when the order carries no number.
func (b *Backend) downloadOrder(w http.ResponseWriter, r *http.Request) {
	rec, ok := b.find(collOrders, r.PathValue("id"))
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Purchase order not found", nil)
		return
	}
	name := ""
	if no, _ := rec["noPo"].(string); no != "" {
		name = "PO-" + no + ".pdf"
	}
	writeEnvelope(w, http.StatusOK, "Success", document(fmt.Sprintf("purchase order %v", rec["id"]), name))
}

func (b *Backend) createInvoice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PurchaseOrderID int64  `json:"purchaseOrderId"`
		NoInvoice       string `json:"noInvoice"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if _, ok := b.find(collOrders, strconv.FormatInt(body.PurchaseOrderID, 10)); !ok {
		writeEnvelope(w, http.StatusNotFound, "Purchase order not found", nil)
		return
	}
	name := "invoice_" + strconv.FormatInt(body.PurchaseOrderID, 10) + ".pdf"
	if body.NoInvoice != "" {
		name = "INV-" + body.NoInvoice + ".pdf"
	}
	writeEnvelope(w, http.StatusCreated, "Invoice created", document("invoice", name))
}

func (b *Backend) createReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Expected multipart form data", nil)
		return
	}
	event := r.FormValue("event")
	if event == "" {
		writeEnvelope(w, http.StatusBadRequest, "Event is required", nil)
		return
	}
	attachments := 0
	for _, files := range r.MultipartForm.File {
		attachments += len(files)
	}
	rec := b.insert(collReports, map[string]any{
		"event":       event,
		"eventDate":   r.FormValue("tanggal"),
		"company":     r.FormValue("perusahaan"),
		"attachments": attachments,
		"createdAt":   stamp(),
		"createdBy":   actor(r),
	}, false)
	writeEnvelope(w, http.StatusCreated, "Final report created",
		document("final report "+event, fmt.Sprintf("final_report_%v.pdf", rec["id"])))
}

func (b *Backend) downloadReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := b.find(collReports, r.PathValue("id"))
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Final report not found", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="final_report_%v.pdf"`, rec["id"]))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(FakePDF(fmt.Sprint("final report ", rec["event"])))
}

func (b *Backend) addFreelancer(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	str := func(k string) string {
		s, _ := body[k].(string)
		return s
	}

	id, ok := b.createUser(w, newUserBody{
		Name:     str("name"),
		Username: str("username"),
		Role:     string(permission.RoleFreelancer),
		Password: str("password"),
	})
	if !ok {
		return
	}

	b.mu.Lock()
	for _, u := range b.users {
		if u.id == id {
			for _, k := range []string{"email", "address", "phoneNumber", "placeOfBirth", "dateOfBirth"} {
				if v := str(k); v != "" {
					u.profile[k] = v
				}
			}
		}
	}
	b.mu.Unlock()

	delete(body, "password")
	body["userId"] = id
	body["role"] = string(permission.RoleFreelancer)
	body["isWorking"] = false
	rec := b.insert(collFreelancers, body, false)
	rec["id"] = id
	writeEnvelope(w, http.StatusCreated, "Freelancer registered", rec)
}
