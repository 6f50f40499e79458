package model

// ListeningPort is a port a server block listens on
type ListeningPort struct {
	BaseModel
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Port  uint32 `gorm:"not null" json:"port"`
	SSL   bool   `gorm:"default:false" json:"ssl"`
	HTTP2 bool   `gorm:"default:false" json:"http2"`
}

// TableName 指定表名
func (ListeningPort) TableName() string {
	return "listening_ports"
}
