// Package condition normalises the loosely structured query conditions models
// accept into the canonical Query consumed by storage backends.
package condition

// DefaultPaginateFields is the projection used by the pagination count query
const DefaultPaginateFields = "COUNT(*) as count"

// DefaultResultsPerPage is the page size when pagination is requested without one
const DefaultResultsPerPage = 20

// Spec is the caller-facing condition set of a query. Zero values mean "not set".
type Spec struct {
	// Conditions maps a field to a scalar, nil, a slice (IN) or an
	// operator map such as {">": 5}
	Conditions map[string]any
	Fields     []string
	Limit      *int
	Offset     *int
	OrderBy    string
	GroupBy    string
	// Join lists names of pre-declared joins or literal join fragments
	Join           []string
	Paginate       bool
	PaginateFields string
	ResultsPerPage int
	CurrentPage    int
	PreQuery       string
	PostQuery      string
}

// Query is the canonical argument structure handed to storage
type Query struct {
	Table          string         `json:"table"`
	Where          map[string]any `json:"where"`
	Fields         []string       `json:"fields"`
	Limit          *int           `json:"limit"`
	Offset         *int           `json:"offset"`
	OrderBy        string         `json:"order_by"`
	GroupBy        string         `json:"group_by"`
	Join           string         `json:"join"`
	Paginate       bool           `json:"paginate"`
	PaginateFields string         `json:"paginate_fields"`
	ResultsPerPage int            `json:"results_per_page"`
	CurrentPage    int            `json:"current_page"`
	PreQuery       string         `json:"prequery,omitempty"`
	PostQuery      string         `json:"postquery,omitempty"`
	FindOne        bool           `json:"find_one,omitempty"`
	GridFS         bool           `json:"grid_fs,omitempty"`
}

// Int returns a pointer to n, for the optional Spec fields
func Int(n int) *int {
	return &n
}

// Format builds the Query for table. Document stores (documents=true) get an
// empty projection and FindOne in single mode; relational stores project "*"
// unless fields were given and force a limit of one in single mode.
func Format(spec Spec, table string, documents, single bool) *Query {
	q := &Query{
		Table:          table,
		Where:          spec.Conditions,
		Limit:          spec.Limit,
		Offset:         spec.Offset,
		OrderBy:        spec.OrderBy,
		GroupBy:        spec.GroupBy,
		Paginate:       spec.Paginate,
		PaginateFields: spec.PaginateFields,
		ResultsPerPage: spec.ResultsPerPage,
		CurrentPage:    spec.CurrentPage,
	}
	if q.Where == nil {
		q.Where = map[string]any{}
	}
	if q.PaginateFields == "" {
		q.PaginateFields = DefaultPaginateFields
	}
	if q.ResultsPerPage == 0 {
		q.ResultsPerPage = DefaultResultsPerPage
	}

	if documents {
		q.Fields = append([]string(nil), spec.Fields...)
		if single {
			q.FindOne = true
		}
		return q
	}

	q.PreQuery = spec.PreQuery
	q.PostQuery = spec.PostQuery
	if len(spec.Fields) > 0 {
		q.Fields = append([]string(nil), spec.Fields...)
	} else {
		q.Fields = []string{"*"}
	}
	if single {
		q.Limit = Int(1)
	}
	return q
}
