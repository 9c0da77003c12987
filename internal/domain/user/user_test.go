package user

import "testing"

func strptr(s string) *string { return &s }

func TestDisplayNameContractor(t *testing.T) {
	tests := []struct {
		name    string
		profile *ContractorProfile
		want    string
	}{
		{
			name:    "business name wins",
			profile: &ContractorProfile{BusinessName: strptr("Acme Roofing"), FirstName: strptr("Ann"), LastName: strptr("Lee")},
			want:    "Acme Roofing",
		},
		{
			name:    "falls back to first and last",
			profile: &ContractorProfile{FirstName: strptr("Ann"), LastName: strptr("Lee")},
			want:    "Ann Lee",
		},
		{
			name:    "first name only",
			profile: &ContractorProfile{FirstName: strptr("Ann")},
			want:    "Ann",
		},
		{
			name:    "blank business name ignored",
			profile: &ContractorProfile{BusinessName: strptr("  "), FirstName: strptr("Ann"), LastName: strptr("Lee")},
			want:    "Ann Lee",
		},
		{
			name:    "empty profile falls back to email",
			profile: &ContractorProfile{},
			want:    "ann@example.com",
		},
		{
			name:    "missing profile falls back to email",
			profile: nil,
			want:    "ann@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Email: "ann@example.com", Role: RoleContractor, Contractor: tt.profile}
			if got := u.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayNameOtherRoles(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{
			name: "subcontractor name",
			user: &User{Email: "sub@example.com", Role: RoleSubcontractor, Subcontractor: &SubcontractorProfile{Name: strptr("Bolt Electric")}},
			want: "Bolt Electric",
		},
		{
			name: "subcontractor without profile",
			user: &User{Email: "sub@example.com", Role: RoleSubcontractor},
			want: "sub@example.com",
		},
		{
			name: "homeowner name",
			user: &User{Email: "home@example.com", Role: RoleHomeowner, Homeowner: &HomeownerProfile{Name: strptr("Casey Park")}},
			want: "Casey Park",
		},
		{
			name: "specialist blank name",
			user: &User{Email: "spec@example.com", Role: RoleSpecialist, Specialist: &SpecialistProfile{Name: strptr("")}},
			want: "spec@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAvatarPath(t *testing.T) {
	path := strptr("avatars/u1.png")

	u := &User{Role: RoleContractor, Contractor: &ContractorProfile{ImagePath: path}}
	if got := u.AvatarPath(); got == nil || *got != *path {
		t.Errorf("AvatarPath() = %v, want %q", got, *path)
	}

	u = &User{Role: RoleSubcontractor}
	if got := u.AvatarPath(); got != nil {
		t.Errorf("AvatarPath() = %v, want nil", got)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleContractor, RoleSubcontractor, RoleHomeowner, RoleSpecialist} {
		if !r.Valid() {
			t.Errorf("Role(%q).Valid() = false, want true", r)
		}
	}
	if Role("admin").Valid() {
		t.Error(`Role("admin").Valid() = true, want false`)
	}
}
