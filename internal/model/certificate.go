package model

import "time"

// Certificate represents an SSL/TLS certificate and its private key
type Certificate struct {
	BaseModel
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Certificate string    `gorm:"type:mediumtext;not null" json:"certificate"`
	PrivateKey  string    `gorm:"type:mediumtext;not null" json:"-"`
	ExpiredAt   time.Time `gorm:"not null;index" json:"expired_at"`
	Issuer      string    `gorm:"type:varchar(255)" json:"issuer"`
	AutoRenew   bool      `gorm:"default:false" json:"auto_renew"`

	// 关联
	Domains []Domain `gorm:"many2many:certificate_domains;joinForeignKey:CertificateID;joinReferences:DomainID" json:"domains,omitempty"`
}

// TableName specifies the table name for Certificate
func (Certificate) TableName() string {
	return "certificates"
}
