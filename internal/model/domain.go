package model

// Domain is a hostname that servers and certificates are associated with
type Domain struct {
	BaseModel
	Domain string `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
}

// TableName 指定表名
func (Domain) TableName() string {
	return "domains"
}
