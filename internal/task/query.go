package task

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// allowedSortFields は一覧クエリでソート可能なフィールド。
// 未知のフィールドは無視ではなく明示的に拒否する（決定的な振る舞い）。
var allowedSortFields = map[string]bool{
	"description": true,
	"completed":   true,
	"created_at":  true,
	"updated_at":  true,
}

// ParseListQuery はリクエストのクエリパラメータからTaskQueryを構築する。
// completed=true|false、sortBy=field:asc|desc、limit、skipを受け付ける。
// 不正な値はフィールド別メッセージを持つバリデーションエラーとして拒否する。
func ParseListQuery(values url.Values) (model.TaskQuery, error) {
	query := model.TaskQuery{}
	fields := map[string]string{}

	if raw := values.Get("completed"); raw != "" {
		switch raw {
		case "true":
			v := true
			query.Completed = &v
		case "false":
			v := false
			query.Completed = &v
		default:
			fields["completed"] = fmt.Sprintf("completed must be true or false, got %q", raw)
		}
	}

	if raw := values.Get("sortBy"); raw != "" {
		field, direction, ok := strings.Cut(raw, ":")
		if !ok {
			fields["sortBy"] = fmt.Sprintf("sortBy must have the form field:direction, got %q", raw)
		} else {
			if !allowedSortFields[field] {
				fields["sortBy"] = fmt.Sprintf("unknown sort field: %s", field)
			}
			switch direction {
			case "asc":
				query.SortDirection = model.SortAsc
			case "desc":
				query.SortDirection = model.SortDesc
			default:
				fields["sortBy"] = fmt.Sprintf("sort direction must be asc or desc, got %q", direction)
			}
			query.SortField = field
		}
	}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields["limit"] = fmt.Sprintf("limit must be a non-negative integer, got %q", raw)
		} else {
			query.Limit = n
		}
	}

	if raw := values.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields["skip"] = fmt.Sprintf("skip must be a non-negative integer, got %q", raw)
		} else {
			query.Skip = n
		}
	}

	if len(fields) > 0 {
		return model.TaskQuery{}, model.NewValidationError(fields)
	}

	return query, nil
}
