package core

type Conf struct {
	Version              string `long:"version" description:"version of the lab engine" env:"QLAB_VERSION"`
	DevMode              bool   `long:"dev-mode" description:"run in dev mode" env:"QLAB_DEV_MODE"`
	DisableStdoutLog     bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QLAB_DISABLE_STDOUT_LOG"`
	EnableFileLog        bool   `long:"enable-file-log" description:"enable log in file" env:"QLAB_ENABLE_FILE_LOG"`
	LogDir               string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QLAB_LOG_DIR"`
	LogLevel             string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QLAB_LOG_LEVEL"`
	LogRotationMaxDays   int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QLAB_LOG_ROTATION_MAX_DAYS"`
	UseDummyDevice       bool   `long:"enable-dummy-device" description:"use the synthesized dummy device and ignore device settings" env:"QLAB_USE_DUMMY_DEVICE"`
	DeviceSettingPath    string `long:"device-setting-path" description:"device setting file path" default:"./device_setting.toml" env:"QLAB_DEVICE_SETTING_PATH"`
	QueueMaxSize         int    `long:"queue-max-size" description:"queue max size" default:"100" env:"QLAB_QUEUE_MAX_SIZE"`
	QueueRefillThreshold int    `long:"queue-refill-threshold" description:"queue refill threshold" default:"10" env:"QLAB_QUEUE_REFILL_THRESHOLD"`
	SimulatorSeed        int64  `long:"simulator-seed" description:"fixed seed for the simulator backend, 0 means time-based" env:"QLAB_SIMULATOR_SEED"`
	ArchiveDir           string `long:"archive-dir" description:"job archive dir for the file db" default:"./shares/archive" env:"QLAB_ARCHIVE_DIR"`
	APIEndpoint          string `long:"api-endpoint" description:"address of the http api server" default:"localhost:8088" env:"QLAB_API_ENDPOINT"`
	ExportBucket         string `long:"export-bucket" description:"s3 bucket for archive export" env:"QLAB_EXPORT_BUCKET"`
	ExportRegion         string `long:"export-region" description:"s3 region for archive export" default:"us-east-1" env:"QLAB_EXPORT_REGION"`
	ExportPrefix         string `long:"export-prefix" description:"s3 key prefix for archive export" default:"qlab" env:"QLAB_EXPORT_PREFIX"`
	DisableMetricsLog    bool   `long:"disable-metrics-log" description:"disable the periodic metrics log task" env:"QLAB_DISABLE_METRICS_LOG"`
	SettingPath          string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QLAB_SETTING_PATH"`
}
