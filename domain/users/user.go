package users

// User is the externally visible shape of a user record.
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Age       *int    `json:"age"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Record is the stored shape: the User fields plus audit identities and a
// version counter. The version strictly increases by one per successful
// update but is not used as a write-time concurrency guard.
type Record struct {
	ID        string
	Name      string
	Email     string
	Age       *int
	Phone     *string
	Address   *string
	CreatedAt string
	UpdatedAt string
	CreatedBy string
	UpdatedBy string
	Version   int
}

// Public maps a stored record to its externally visible shape.
func (r *Record) Public() *User {
	return &User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Age:       r.Age,
		Phone:     r.Phone,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// CreateUserRequest is the POST /users body.
type CreateUserRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Age     *int    `json:"age,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// UpdateUserRequest is the PUT /users/{id} body. A nil field means the
// caller did not supply it; only supplied fields are validated and written.
type UpdateUserRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Age     *int    `json:"age,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// HasFields reports whether any updatable field was supplied.
func (r *UpdateUserRequest) HasFields() bool {
	return r.Name != nil || r.Email != nil || r.Age != nil || r.Phone != nil || r.Address != nil
}

// RecordPage is one unordered page of stored records. HasMore reflects
// whether the underlying read was truncated.
type RecordPage struct {
	Items   []Record
	Count   int
	HasMore bool
}

// Page is the externally visible list result.
type Page struct {
	Items   []User
	Count   int
	HasMore bool
}

// HealthStatus is the health check result.
type HealthStatus struct {
	Healthy   bool   `json:"healthy"`
	TableName string `json:"tableName"`
	Timestamp string `json:"timestamp"`
}
