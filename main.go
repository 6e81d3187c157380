package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"

	"github.com/zhukovaskychina/xmemsim/logger"
	"github.com/zhukovaskychina/xmemsim/server/conf"
	"github.com/zhukovaskychina/xmemsim/server/dashboard"
	"github.com/zhukovaskychina/xmemsim/server/dispatcher"
	"github.com/zhukovaskychina/xmemsim/server/memory"
	"github.com/zhukovaskychina/xmemsim/server/simulator"
	"github.com/zhukovaskychina/xmemsim/util"
)

const help = `
******************************************************************************************
*  XMemSim - virtual memory paging simulator
*  1. -- configPath   配置文件(.ini 或 .toml)，默认 conf/xmemsim.ini
*  2. -- policy       覆盖置换算法: fifo | clock | lru
*  3. -- mode         覆盖运行模式: auto | manual
*  4. -- headless     不启动仪表盘，从标准输入读取命令
******************************************************************************************
`

func main() {
	var (
		configPath string
		policyName string
		modeName   string
		headless   bool
	)
	flag.StringVar(&configPath, "configPath", "", "配置文件路径")
	flag.StringVar(&policyName, "policy", "", "置换算法")
	flag.StringVar(&modeName, "mode", "", "运行模式")
	flag.BoolVar(&headless, "headless", false, "从标准输入读取命令")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		flag.PrintDefaults()
	}
	flag.Parse()

	config, err := conf.NewCfg().Load(&conf.CommandLineArgs{ConfigPath: configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if policyName != "" {
		if config.Policy, err = memory.ParsePolicy(policyName); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}
	switch modeName {
	case "":
	case "auto":
		config.AutoMode = true
	case "manual":
		config.AutoMode = false
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown mode %q\n", modeName)
		os.Exit(1)
	}

	logConfig := logger.LogConfig{
		ErrorLogPath: config.LogError,
		InfoLogPath:  config.LogInfos,
		LogLevel:     config.LogLevel,
		Quiet:        !headless,
	}
	if err := logger.InitLogger(logConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	logger.Infof("XMemSim starting: ram=%d swap=%d page=%d frames=%d policy=%s",
		config.RAMSize, config.SwapSize, config.PageSize, config.FrameCount(), config.Policy)

	managerRandom, driverRandom := newRandoms(config.Seed)
	manager, err := memory.NewManager(memory.ManagerConfig{
		RAMSize:  config.RAMSize,
		SwapSize: config.SwapSize,
		PageSize: config.PageSize,
		Policy:   config.Policy,
		Random:   managerRandom,
	})
	if err != nil {
		logger.Fatalf("create memory manager: %v", err)
	}
	cmdDispatcher := dispatcher.NewCommandDispatcher(manager)
	driver := simulator.NewDriver(cmdDispatcher, simulator.DriverConfig{
		MaxProcesses: config.MaxProcesses,
		AutoMode:     config.AutoMode,
		Random:       driverRandom,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if headless {
		if err := runHeadless(ctx, cmdDispatcher); err != nil {
			logger.Errorf("headless session: %v", err)
			os.Exit(1)
		}
		return
	}

	go driver.Run(ctx, config.TickDuration)
	board := dashboard.New(cmdDispatcher, driver, config.DumpDir)
	if err := board.Run(ctx, 100*time.Millisecond); err != nil {
		logger.Errorf("dashboard: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("XMemSim stopped")
}

// newRandoms 为管理器和驱动创建两个独立的随机序列，seed为0时按时间取种
func newRandoms(seed int64) (memory.RandomSource, memory.RandomSource) {
	if seed == 0 {
		return util.NewTimeSeededRandom(), util.NewTimeSeededRandom()
	}
	return util.NewRandom(seed), util.NewRandom(util.DeriveSeed(seed, 1))
}

// runHeadless 逐行读取命令并输出结果
func runHeadless(ctx context.Context, d *dispatcher.CommandDispatcher) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		cmd, err := dispatcher.ParseCommand(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		res, err := d.Dispatch(cmd)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResult(res)
	}
	return errors.Trace(scanner.Err())
}

func printResult(res *dispatcher.Result) {
	switch res.Type {
	case dispatcher.CMD_SNAPSHOT:
		snap := res.Snapshot
		fmt.Println(dashboard.StatsText(snap, simulator.DefaultMaxProcesses))
		for _, row := range dashboard.ProcessRows(snap) {
			fmt.Println("  " + row)
		}
		for _, e := range snap.Events {
			fmt.Println("  " + e)
		}
	case dispatcher.CMD_TERMINATE, dispatcher.CMD_TERMINATE_RANDOM:
		if res.Terminated {
			fmt.Printf("ok: P%d terminated\n", res.PID)
		} else {
			fmt.Println("ok: nothing to terminate")
		}
	default:
		fmt.Printf("ok: %s\n", res.Type)
	}
}
