package dto

// DepartmentCreateRequest payload for registering a department. The name field
// is called "dept" on the wire for compatibility with the intake frontend.
type DepartmentCreateRequest struct {
	Dept        string `json:"dept"`
	Place       string `json:"place"`
	Pincode     string `json:"pincode"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
}

// DepartmentResponse is the public department view.
type DepartmentResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Place       string `json:"place"`
	Pincode     string `json:"pincode"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
}
