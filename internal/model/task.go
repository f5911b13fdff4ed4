package model

import "time"

type Task struct {
	ID          string     `bson:"_id" json:"id"`
	BoardID     string     `bson:"board_id" json:"board_id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description" json:"description"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date"`
	AssignedTo  []string   `bson:"assigned_to" json:"assigned_to"`
	Unassigned  bool       `bson:"unassigned" json:"unassigned"`
	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at"`
	CreatorID   string     `bson:"creator_id" json:"creator_id"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// SetAssignees replaces the assignment list, dropping duplicates and empties.
func (t *Task) SetAssignees(userIDs []string) {
	seen := make(map[string]bool, len(userIDs))
	out := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	t.AssignedTo = out
	t.Unassigned = len(out) == 0
}

func (t *Task) IsAssigned(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Unassign drops userID and reports whether the task changed.
func (t *Task) Unassign(userID string) bool {
	if !t.IsAssigned(userID) {
		return false
	}
	rest := make([]string, 0, len(t.AssignedTo)-1)
	for _, id := range t.AssignedTo {
		if id != userID {
			rest = append(rest, id)
		}
	}
	t.SetAssignees(rest)
	return true
}

// SetCompleted flips the completion flag and stamps or clears CompletedAt.
func (t *Task) SetCompleted(done bool, now time.Time) {
	t.Completed = done
	if done {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}
