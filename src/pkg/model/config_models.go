package model

type Config struct {
	DatabaseType   string `json:"database_type" yaml:"database_type" validate:"required,oneof=sqlite"`
	DatabaseDir    string `json:"database_dir" yaml:"database_dir" validate:"required"`
	DatabaseFile   string `json:"database_file" yaml:"database_file" validate:"required"`
	LogFolder      string `json:"log_folder" yaml:"log_folder" validate:"required"`
	CommandLog     string `json:"command_log" yaml:"command_log" validate:"required"`
	ErrorLog       string `json:"error_log" yaml:"error_log" validate:"required"`
	InfoLog        string `json:"info_log" yaml:"info_log" validate:"required"`
	LogLevel       string `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HistoryFile    string `json:"history_file" yaml:"history_file"`
	CacheSlot      string `json:"cache_slot" yaml:"cache_slot" validate:"required,max=128"`
	HistoryLimit   int    `json:"history_limit" yaml:"history_limit" validate:"gte=0"`
	RootName       string `json:"root_name" yaml:"root_name"`
	RootColor      string `json:"root_color" yaml:"root_color"`
	ExportFormat   string `json:"export_format" yaml:"export_format" validate:"omitempty,oneof=json xml yaml"`
	SessionTimeout int    `json:"session_timeout_minutes" yaml:"session_timeout_minutes" validate:"gte=0"`
	MetricsAddr    string `json:"metrics_addr" yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	UseColor       bool   `json:"use_color" yaml:"use_color"`
}
