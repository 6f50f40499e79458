package model

// Location binds a path of a server to an upstream
type Location struct {
	BaseModel
	ServerID          uint64 `gorm:"not null;index" json:"server_id"`
	UpstreamID        uint64 `gorm:"not null;index" json:"upstream_id"`
	Path              string `gorm:"type:varchar(255);default:'/'" json:"path"`
	AdditionalConfig  string `gorm:"type:mediumtext" json:"additional_config"`
	ClientMaxBodySize string `gorm:"type:varchar(10)" json:"client_max_body_size"` // e.g. 10m
}

// TableName 指定表名
func (Location) TableName() string {
	return "locations"
}
