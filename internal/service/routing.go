package service

import "github.com/college-icrs/icrs-api/internal/models"

// RouteSource records which rule produced a routing decision.
type RouteSource string

const (
	RouteExplicit           RouteSource = "explicit"
	RouteSubcategoryDefault RouteSource = "subcategory_default"
	RouteCategoryDefault    RouteSource = "category_default"
	RouteUnassigned         RouteSource = "unassigned"
)

// RoutingDecision is the assignee and initial status for a new grievance.
type RoutingDecision struct {
	AssigneeID *string
	Status     models.GrievanceStatus
	Source     RouteSource
}

// Route picks the initial assignee. The first matching rule wins:
// an explicit assignee is kept as is and the grievance stays SUBMITTED,
// otherwise the subcategory default and then the category default take it IN_PROGRESS.
func Route(explicitAssignee *string, category *models.Category, subcategory *models.Subcategory) RoutingDecision {
	if explicitAssignee != nil && *explicitAssignee != "" {
		return RoutingDecision{AssigneeID: explicitAssignee, Status: models.StatusSubmitted, Source: RouteExplicit}
	}
	if subcategory != nil && subcategory.DefaultAssigneeID != nil {
		return RoutingDecision{AssigneeID: subcategory.DefaultAssigneeID, Status: models.StatusInProgress, Source: RouteSubcategoryDefault}
	}
	if category != nil && category.DefaultAssigneeID != nil {
		return RoutingDecision{AssigneeID: category.DefaultAssigneeID, Status: models.StatusInProgress, Source: RouteCategoryDefault}
	}
	return RoutingDecision{Status: models.StatusSubmitted, Source: RouteUnassigned}
}
