package scheduling

import "hospital-admin-server/internal/models"

// Principal identifies the authenticated caller of a core operation. It is
// passed explicitly into every operation rather than read from ambient
// session state. The ID is only meaningful together with the role, since
// admins, doctors and patients live in separate tables.
type Principal struct {
	ID   uint
	Role models.Role
}

// IsAdmin reports whether the principal is an administrator.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// IsDoctor reports whether the principal is the doctor with the given id.
func (p Principal) IsDoctor(doctorID uint) bool {
	return p.Role == models.RoleDoctor && p.ID == doctorID
}

// IsPatient reports whether the principal is the patient with the given id.
func (p Principal) IsPatient(patientID uint) bool {
	return p.Role == models.RolePatient && p.ID == patientID
}
