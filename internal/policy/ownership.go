// Package policy holds ownership checks for records that live in a user
// namespace.
package policy

import "github.com/diewo77/brushwork/internal/models"

// Owns reports whether resource belongs to userID. Values that do not carry an
// owner are denied.
func Owns(userID uint, resource any) bool {
	o, ok := resource.(models.Ownable)
	if !ok || o == nil {
		return false
	}
	return userID != 0 && o.GetUserID() == userID
}

// ForeignJobs returns the ids of jobs not owned by userID.
func ForeignJobs(userID uint, jobs []models.Job) []string {
	var out []string
	for i := range jobs {
		if !Owns(userID, &jobs[i]) {
			out = append(out, jobs[i].ID)
		}
	}
	return out
}
