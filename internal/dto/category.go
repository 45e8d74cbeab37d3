package dto

// CreateCategoryRequest defines a new grievance category.
type CreateCategoryRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	Description       *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DefaultAssigneeID *string `json:"default_assignee_id,omitempty" validate:"omitempty,uuid"`
	Sensitive         bool    `json:"sensitive"`
	HideIdentity      bool    `json:"hide_identity"`
}

// CreateSubcategoryRequest defines a subcategory under an existing category.
type CreateSubcategoryRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	Description       *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DefaultAssigneeID *string `json:"default_assignee_id,omitempty" validate:"omitempty,uuid"`
}
