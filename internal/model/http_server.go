package model

// HttpServer is one virtual server (nginx server block)
type HttpServer struct {
	BaseModel
	ListeningPortID  uint64  `gorm:"not null;index" json:"listening_port_id"`
	Name             string  `gorm:"type:varchar(255);not null" json:"name"`
	AdditionalConfig string  `gorm:"type:mediumtext" json:"additional_config"`
	Status           string  `gorm:"type:varchar(16);default:'active'" json:"status"`
	AccessLogPath    string  `gorm:"type:varchar(255)" json:"access_log_path"`
	ErrorLogPath     string  `gorm:"type:varchar(255)" json:"error_log_path"`
	LogLevel         string  `gorm:"type:varchar(16)" json:"log_level"`
	CertificateID    *uint64 `gorm:"index;default:null" json:"certificate_id"`

	// 关联
	ListeningPort *ListeningPort `gorm:"foreignKey:ListeningPortID" json:"listening_port,omitempty"`
	Domains       []Domain       `gorm:"many2many:server_domains;joinForeignKey:ServerID;joinReferences:DomainID" json:"domains,omitempty"`
}

// TableName 指定表名
func (HttpServer) TableName() string {
	return "http_servers"
}

// IsActive reports whether the server should be rendered
func (s *HttpServer) IsActive() bool {
	return s.Status == StatusActive
}
