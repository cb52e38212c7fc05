package auth

// Principal is the authenticated actor resolved once at the HTTP boundary
// and threaded explicitly through every core operation. CompanyID is nil
// only for the platform superadmin.
type Principal struct {
	UserID    uint
	Email     string
	CompanyID *uint
	Role      string
}

// SameCompany reports whether the principal belongs to the given company.
func (p Principal) SameCompany(companyID uint) bool {
	return p.CompanyID != nil && *p.CompanyID == companyID
}
