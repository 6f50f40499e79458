package model

// Upstream is a named backend pool with a single endpoint
type Upstream struct {
	BaseModel
	Name                string `gorm:"type:varchar(255);not null" json:"name"`
	Server              string `gorm:"type:varchar(255);not null" json:"server"` // host:port
	KeepAlive           uint64 `gorm:"default:0" json:"keep_alive"`
	Status              string `gorm:"type:varchar(16);default:'active'" json:"status"`
	HealthCheckPath     string `gorm:"type:varchar(255)" json:"health_check_path"`
	HealthCheckInterval uint64 `gorm:"default:50" json:"health_check_interval"` // seconds
	MaxFails            uint64 `gorm:"default:3" json:"max_fails"`
}

// TableName 指定表名
func (Upstream) TableName() string {
	return "upstreams"
}

// IsActive reports whether the upstream takes traffic and gets probed
func (u *Upstream) IsActive() bool {
	return u.Status == StatusActive
}
