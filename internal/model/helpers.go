package model

// IDPtr returns a pointer to id, for optional references such as HttpServer.CertificateID
func IDPtr(id uint64) *uint64 {
	return &id
}

// IDVal returns the referenced id, or 0 when p is nil
func IDVal(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}
