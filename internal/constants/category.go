package constants

// Category identifies which handler variant executes a task.
type Category string

// Handler categories.
const (
	CategoryBackend    Category = "backend"
	CategoryFrontend   Category = "frontend"
	CategoryDatabase   Category = "database"
	CategoryTesting    Category = "testing"
	CategoryDeployment Category = "deployment"
	CategoryGeneric    Category = "generic"
)

// String returns the string representation of the Category.
func (c Category) String() string {
	return string(c)
}

// CategoryOrder returns the categories in match precedence. A title that
// contains more than one keyword is routed to the earliest entry. Generic is
// the fallback and is never matched by keyword.
func CategoryOrder() []Category {
	return []Category{
		CategoryBackend,
		CategoryFrontend,
		CategoryDatabase,
		CategoryTesting,
		CategoryDeployment,
	}
}
