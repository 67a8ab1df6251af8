package output

import (
	"errors"

	"taskgraph/internal/graph"
)

// ErrorPayload is the JSON shape of a failed command. Circular dependency
// errors carry the offending path.
func ErrorPayload(err error) map[string]interface{} {
	payload := map[string]interface{}{"error": true, "message": err.Error()}

	var circ *graph.CircularDependencyError
	if errors.As(err, &circ) {
		payload["is_circular"] = true
		payload["path"] = circ.Path
		payload["path_titles"] = circ.PathTitles
	}
	var nf *graph.TaskNotFoundError
	if errors.As(err, &nf) {
		payload["task_id"] = nf.TaskID
	}
	return payload
}
