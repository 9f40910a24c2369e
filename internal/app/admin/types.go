package admin

type CreateMemberInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
	Admin       bool
}

// UpdateMemberInput is a patch: nil fields are left unchanged. Username is
// immutable once assigned; credentials change through SetPassword only.
type UpdateMemberInput struct {
	DisplayName *string
	Email       *string
	Admin       *bool
	IsActive    *bool
}
