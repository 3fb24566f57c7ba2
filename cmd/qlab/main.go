package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/BrianOtieno/quantum-computing/api"
	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/db"
	"github.com/BrianOtieno/quantum-computing/estimation"
	"github.com/BrianOtieno/quantum-computing/log"
	multiprog "github.com/BrianOtieno/quantum-computing/multiprog/manual"
	"github.com/BrianOtieno/quantum-computing/poller"
	"github.com/BrianOtieno/quantum-computing/qpu"
	"github.com/BrianOtieno/quantum-computing/sampling"
	"github.com/BrianOtieno/quantum-computing/scheduler"
	"github.com/BrianOtieno/quantum-computing/transpiler"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var lab *QLab

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	lab = &QLab{}
	setParser(lab)
}

type QLab struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	DBManager  string `long:"db" description:"db" default:"memory" choice:"memory" choice:"file" env:"QLAB_DB_MANAGER_TYPE"`
	Transpiler string `long:"transpiler" description:"transpiler-type" default:"native" choice:"native" choice:"none" env:"QLAB_TRANSPILER_TYPE"`
	QPU        string `long:"qpu" description:"qpu-type" default:"simulator" choice:"simulator" choice:"dummy" env:"QLAB_QPU_TYPE"`
	Scheduler  string `long:"scheduler" description:"scheduler-type" default:"normal" env:"QLAB_SCHEDULER_TYPE"`
}

func setParser(lab *QLab) {
	parser = flags.NewParser(lab, flags.Default)
	parser.ShortDescription = "qlab"
	parser.LongDescription = "a local laboratory for small quantum circuits."
	parser.AddCommand("serve", "start the engine",
		"start the scheduler, the api server and the periodic tasks", newServeCmd())
	parser.AddCommand("superposition", "superposition demo",
		"put one qubit in superposition and sample it", newSuperpositionCmd())
	parser.AddCommand("gates", "single-qubit gate tour",
		"walk the single-qubit gates and show the states they prepare", newGatesCmd())
	parser.AddCommand("bell", "bell pair demo",
		"entangle two qubits and sample the pair", newBellCmd())
	parser.AddCommand("ghz", "ghz state demo",
		"entangle three qubits and sample the register", newGHZCmd())
	parser.AddCommand("teleport", "teleportation demo",
		"teleport a one-qubit state through a bell pair", newTeleportCmd())
	parser.AddCommand("grover", "grover search demo",
		"amplify a marked bitstring and sample it", newGroverCmd())
	parser.AddCommand("vqe", "vqe demo",
		"minimize the two-qubit hydrogen energy with a variational ansatz", newVQECmd())
	parser.AddCommand("qaoa", "qaoa maxcut demo",
		"cut a small ring graph with the quantum approximate optimization algorithm", newQAOACmd())
	parser.AddCommand("tomo", "state tomography demo",
		"reconstruct a prepared state from measurements in all pauli bases", newTomoCmd())
	parser.AddCommand("export", "export the archive",
		"upload the job archive to s3", newExportCmd())
	parser.AddCommand("version", "print the version",
		"print the engine version", newVersionCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to pasre flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (l *QLab) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() (core.QPUManager, error) {
		switch l.DIContainerParameters.QPU {
		case "simulator":
			return &qpu.SimulatorQPU{}, nil
		case "dummy":
			return &qpu.DummyQPU{}, nil
		default:
			return &qpu.SimulatorQPU{}, fmt.Errorf("%s is an unknown QPU", l.DIContainerParameters.QPU)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.Transpiler, error) {
		switch l.DIContainerParameters.Transpiler {
		case "native":
			return &transpiler.NativeTranspiler{}, nil
		case "none":
			return &transpiler.PassTranspiler{}, nil
		default:
			return &transpiler.NativeTranspiler{}, fmt.Errorf("%s is an unknown Transpiler", l.DIContainerParameters.Transpiler)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.Scheduler { return &scheduler.NormalScheduler{} })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.DBManager, error) {
		switch l.DIContainerParameters.DBManager {
		case "memory":
			return &core.MemoryDB{}, nil
		case "file":
			return &db.FileDB{}, nil
		default:
			return &core.MemoryDB{}, fmt.Errorf("%s is an unknown DB", l.DIContainerParameters.DBManager)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func (l *QLab) startCore(conf *core.Conf) error {
	core.NewJobManager(
		&sampling.SamplingJob{},
		&estimation.EstimationJob{},
		&multiprog.ManualJob{},
	)
	err := core.GetSystemComponents().StartContainer()
	if err != nil {
		return err
	}
	core.SetInfo(conf)
	return nil
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, debugCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "qlab-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

type serveCmd struct{}

func newServeCmd() *serveCmd {
	return &serveCmd{}
}

func (c *serveCmd) Execute(args []string) error {
	logger := setZap(lab.Conf)
	defer logger.Sync()

	core.ResetSetting()
	registerSetting()
	if err := core.ParseSettingFromPath(lab.Conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}

	s := setupSystemComponents(lab.Conf)
	defer s.TearDown()

	if err := lab.startCore(lab.Conf); err != nil {
		zap.L().Error(fmt.Sprintf("failed to start the core/reason:%s", err.Error()))
		return err
	}

	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			poller.PollerTaskName:  &poller.Poller{},
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
		APIServerImplMap: core.APIServerImplMap{
			api.APIServerName: &api.Server{},
		},
	}
	rc, err := core.NewRunContextWithSettingPath(lab.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	zap.L().Debug("Setting up run-group")
	if err := c.setupRunGroup(rc); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setup run group. Reason:%s", err))
		return err
	}

	if err := rc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		os.Exit(1)
	}

	return nil
}

func (c *serveCmd) setupRunGroup(rc *core.RunContext) error {
	rc.Add(
		run.SignalHandler(
			rc.Context,
			os.Interrupt))
	core.SetRunContext(rc)
	return nil
}

type exportCmd struct{}

func newExportCmd() *exportCmd {
	return &exportCmd{}
}

func (c *exportCmd) Execute(args []string) error {
	logger := setZap(lab.Conf)
	defer logger.Sync()

	if lab.Conf.ExportBucket == "" {
		zap.L().Info("no export bucket is configured, nothing to export")
		fmt.Println("no export bucket is configured, set QLAB_EXPORT_BUCKET to enable the export")
		return nil
	}
	ctx := context.Background()
	exporter, err := db.NewS3Exporter(ctx, lab.Conf)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up the exporter. Reason:%s", err))
		return err
	}
	uploaded, err := exporter.Export(ctx, lab.Conf.ArchiveDir)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to export the archive. Reason:%s", err))
		return err
	}
	fmt.Printf("exported %d archive files to s3://%s/%s\n",
		uploaded, lab.Conf.ExportBucket, lab.Conf.ExportPrefix)
	return nil
}

type versionCmd struct{}

func newVersionCmd() *versionCmd {
	return &versionCmd{}
}

func (c *versionCmd) Execute(args []string) error {
	core.SetVersion(lab.Conf, versionByBuildFlag)
	fmt.Println(core.Version)
	return nil
}

// TODO : move to log package
func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", lab.DIContainerParameters))

	container, err := lab.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	return s
}

func registerSetting() {
	core.RegisterSetting(estimation.ESTIMATION_SETTING_KEY, estimation.NewEstimationSetting())
}
