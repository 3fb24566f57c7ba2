package core

type NonSecretConf struct {
	DevMode              bool
	DisableStdoutLog     bool
	EnableFileLog        bool
	LogDir               string
	LogLevel             string
	LogRotationMaxDays   int
	UseDummyDevice       bool
	DeviceSettingPath    string
	QueueMaxSize         int
	QueueRefillThreshold int
	SimulatorSeed        int64
	ArchiveDir           string
	APIEndpoint          string
	ExportBucket         string
	ExportRegion         string
	ExportPrefix         string
	DisableMetricsLog    bool
	SettingPath          string
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:              c.DevMode,
		DisableStdoutLog:     c.DisableStdoutLog,
		EnableFileLog:        c.EnableFileLog,
		LogDir:               c.LogDir,
		LogLevel:             c.LogLevel,
		LogRotationMaxDays:   c.LogRotationMaxDays,
		UseDummyDevice:       c.UseDummyDevice,
		DeviceSettingPath:    c.DeviceSettingPath,
		QueueMaxSize:         c.QueueMaxSize,
		QueueRefillThreshold: c.QueueRefillThreshold,
		SimulatorSeed:        c.SimulatorSeed,
		ArchiveDir:           c.ArchiveDir,
		APIEndpoint:          c.APIEndpoint,
		ExportBucket:         c.ExportBucket,
		ExportRegion:         c.ExportRegion,
		ExportPrefix:         c.ExportPrefix,
		DisableMetricsLog:    c.DisableMetricsLog,
		SettingPath:          c.SettingPath,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
