package model

// User is the single locally registered account.
// Password is stored as typed unless the store was configured to hash it.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Nickname  string `json:"nickname"`
	Password  string `json:"password"`
	Tasks     []Task `json:"tasks"`
}

// Task is a to-do entry owned by a User.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	IsDone bool   `json:"isDone"`
}

// CloneTasks returns a copy that never aliases ts. A nil input yields an empty slice
// so the stored record always carries "tasks": [].
func CloneTasks(ts []Task) []Task {
	out := make([]Task, len(ts))
	copy(out, ts)
	return out
}
