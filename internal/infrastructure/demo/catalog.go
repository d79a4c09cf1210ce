package demo

import (
	"time"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

// Password shared by every demo account. Demo accounts are fixtures.
const Password = "demo123"

const (
	OrgAlNoorID  = "00000000-0000-4000-8000-0000000000a1"
	OrgDarHudaID = "00000000-0000-4000-8000-0000000000a2"
)

var seededAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Organizations is the fixed tenant catalog, keyed by id.
var Organizations = map[string]entity.Organization{
	OrgAlNoorID: {
		ID:        OrgAlNoorID,
		Name:      "مركز النور لتحفيظ القرآن",
		Slug:      "alnoor",
		Active:    true,
		CreatedAt: seededAt,
	},
	OrgDarHudaID: {
		ID:        OrgDarHudaID,
		Name:      "دار الهدى لتحفيظ القرآن الكريم",
		Slug:      "darhuda",
		Active:    true,
		CreatedAt: seededAt,
	},
}

// Account is one demo login.
type Account struct {
	Email    string
	Password string
	Profile  entity.Profile
}

func account(id, email, name string, role entity.Role, orgID string) Account {
	org := orgID
	return Account{
		Email:    email,
		Password: Password,
		Profile: entity.Profile{
			ID:             id,
			OrganizationID: &org,
			FullName:       name,
			Role:           role,
			Status:         entity.StatusActive,
			Email:          email,
			CreatedAt:      seededAt,
			UpdatedAt:      seededAt,
		},
	}
}

// Accounts is the fixed account catalog, keyed by email.
var Accounts = map[string]Account{
	"admin@demo.com":      account("00000000-0000-4000-8000-000000000001", "admin@demo.com", "أحمد المدير", entity.RoleAdmin, OrgAlNoorID),
	"supervisor@demo.com": account("00000000-0000-4000-8000-000000000002", "supervisor@demo.com", "خالد المشرف", entity.RoleSupervisor, OrgAlNoorID),
	"teacher@demo.com":    account("00000000-0000-4000-8000-000000000003", "teacher@demo.com", "محمد المعلم", entity.RoleTeacher, OrgAlNoorID),
	"student@demo.com":    account("00000000-0000-4000-8000-000000000004", "student@demo.com", "عبدالله الطالب", entity.RoleStudent, OrgAlNoorID),
	"parent@demo.com":     account("00000000-0000-4000-8000-000000000005", "parent@demo.com", "سعد ولي الأمر", entity.RoleParent, OrgAlNoorID),
	"huda@demo.com":       account("00000000-0000-4000-8000-000000000006", "huda@demo.com", "يوسف معلم الهدى", entity.RoleTeacher, OrgDarHudaID),
}

func accountByID(id string) (Account, bool) {
	for _, a := range Accounts {
		if a.Profile.ID == id {
			return a, true
		}
	}
	return Account{}, false
}
