package main

// godial 命令行

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/somebottle/godial/configs"
	"github.com/somebottle/godial/entities"
	"github.com/somebottle/godial/services"
	"github.com/somebottle/godial/utils"
)

// cliOptions 保存全局命令行参数
type cliOptions struct {
	debug         bool
	logFile       string
	envFile       string
	legacy        bool
	clientName    string
	iface         string
	socketTimeout time.Duration
	httpTimeout   time.Duration
}

var (
	options cliOptions
	// 解析后的协议配置，在 PersistentPreRunE 中生成
	settings configs.ProtocolSettings
	// 日志文件写入器，未指定日志文件时为 nil
	logFileWriter *utils.LogWriter
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "godial",
		Short:         "godial - DIAL (Discovery And Launch) client",
		Long:          "godial discovers DIAL second-screen devices on the local network and starts, stops and hides applications on them.",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setUp(cmd)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&options.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&options.logFile, "log-file", "", "Also write logs to this file (rotated by size)")
	flags.StringVar(&options.envFile, "env-file", "", "Load environment variables from this file (default: .env if present)")
	flags.BoolVar(&options.legacy, "legacy", false, "Legacy compatibility, don't send DIAL 2.1 query parameters")
	flags.StringVar(&options.clientName, "client-name", "", "Client friendly name sent when starting applications")
	flags.StringVar(&options.iface, "interface", "", "Network interface used to join the multicast group")
	flags.DurationVar(&options.socketTimeout, "socket-timeout", 0, "M-SEARCH receive timeout (e.g. 1500ms)")
	flags.DurationVar(&options.httpTimeout, "http-timeout", 0, "HTTP connect and read timeout (e.g. 1500ms)")

	rootCmd.AddCommand(newDiscoverCommand())
	rootCmd.AddCommand(newAppCommand())
	rootCmd.AddCommand(newWakeCommand())
	return rootCmd
}

// setUp 读取 .env 与环境变量，再用命令行参数覆盖，最后初始化日志
func setUp(cmd *cobra.Command) error {
	if err := configs.LoadEnvFile(options.envFile); err != nil {
		return err
	}
	if err := configs.ApplyLogEnv(); err != nil {
		return err
	}
	var err error
	settings, err = configs.LoadProtocolSettingsFromEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("legacy") {
		settings.LegacyCompatibility = options.legacy
	}
	if flags.Changed("client-name") {
		settings.ClientFriendlyName = options.clientName
	}
	if flags.Changed("interface") {
		settings.MulticastInterface = options.iface
	}
	if flags.Changed("socket-timeout") {
		settings.SocketTimeout = options.socketTimeout
	}
	if flags.Changed("http-timeout") {
		settings.HTTPConnectTimeout = options.httpTimeout
		settings.HTTPReadTimeout = options.httpTimeout
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if flags.Changed("log-file") {
		configs.SetLogFilePath(options.logFile)
	}
	return setUpLogger(flags.Changed("log-file") || os.Getenv(configs.EnvLogFilePath) != "")
}

// setUpLogger 初始化全局日志记录器，日志写到 STDERR，指定了日志文件时同时写入文件
func setUpLogger(withFile bool) error {
	logLevel := slog.LevelWarn
	if options.debug {
		logLevel = slog.LevelDebug
	}
	var writer io.Writer = os.Stderr
	if withFile {
		var err error
		logFileWriter, err = utils.NewLogWriter(configs.GetLogFilePath(), configs.GetLogMaxSizeBytes(), configs.GetLogMaxHistoricalFiles())
		if err != nil {
			return fmt.Errorf("Failed to set up log file writer: %w", err)
		}
		writer = io.MultiWriter(logFileWriter, os.Stderr)
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	slog.Debug("Protocol settings", "legacy", settings.LegacyCompatibility, "socketTimeout", settings.SocketTimeout,
		"httpConnectTimeout", settings.HTTPConnectTimeout, "httpReadTimeout", settings.HTTPReadTimeout)
	return nil
}

func closeLogWriter() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
	}
}

// deviceView 是 discover --json 的输出格式
type deviceView struct {
	FriendlyName           string `json:"friendly_name"`
	UniqueServiceName      string `json:"usn"`
	DeviceDescriptorURL    string `json:"location"`
	ApplicationResourceURL string `json:"application_url"`
	ServerDescription      string `json:"server,omitempty"`
	WakeOnLanMAC           string `json:"wol_mac,omitempty"`
	WakeOnLanTimeout       int    `json:"wol_timeout,omitempty"`
}

func toDeviceView(server *entities.DialServer) deviceView {
	view := deviceView{
		FriendlyName:      server.FriendlyName,
		UniqueServiceName: server.UniqueServiceName,
		ServerDescription: server.ServerDescription,
		WakeOnLanMAC:      server.WakeOnLanMAC,
		WakeOnLanTimeout:  int(server.WakeOnLanTimeout / time.Second),
	}
	if server.DeviceDescriptorURL != nil {
		view.DeviceDescriptorURL = server.DeviceDescriptorURL.String()
	}
	if server.ApplicationResourceURL != nil {
		view.ApplicationResourceURL = server.ApplicationResourceURL.String()
	}
	return view
}

func newDiscoverCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover DIAL devices on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			discovery := services.NewDiscovery(services.NewProtocolFactory(settings))
			servers := discovery.Discover(cmd.Context())
			views := make([]deviceView, 0, len(servers))
			for _, server := range servers {
				views = append(views, toDeviceView(server))
			}
			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(views)
			}
			if len(views) == 0 {
				fmt.Fprintln(out, "No DIAL devices found")
				return nil
			}
			for _, view := range views {
				fmt.Fprintf(out, "%s\t%s\t%s\n", view.FriendlyName, view.ApplicationResourceURL, view.UniqueServiceName)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print devices as JSON")
	return cmd
}

// connect 用应用资源地址创建连接
func connect(applicationURL string) (*services.DialClientConnection, *url.URL, error) {
	root, err := url.Parse(applicationURL)
	if err != nil || root.Scheme == "" || root.Host == "" {
		return nil, nil, fmt.Errorf("invalid application url %q", applicationURL)
	}
	client := services.NewDialClient(services.NewProtocolFactory(settings))
	client.SetClientFriendlyName(settings.ClientFriendlyName)
	conn, err := client.ConnectTo(&entities.DialServer{ApplicationResourceURL: root})
	if err != nil {
		return nil, nil, err
	}
	return conn, root, nil
}

func newAppCommand() *cobra.Command {
	appCmd := &cobra.Command{
		Use:   "app",
		Short: "Query and control applications on a DIAL device",
	}
	appCmd.AddCommand(newAppGetCommand(), newAppStartCommand(), newAppStopCommand(), newAppHideCommand())
	return appCmd
}

func newAppGetCommand() *cobra.Command {
	var asXML bool
	cmd := &cobra.Command{
		Use:   "get <application-url> <name>",
		Short: "Show the state of an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, root, err := connect(args[0])
			if err != nil {
				return err
			}
			application, ok := conn.GetApplication(cmd.Context(), args[1])
			if !ok {
				return fmt.Errorf("application %s not found", args[1])
			}
			out := cmd.OutOrStdout()
			if asXML {
				doc, err := services.EncodeServiceDocument(application, root)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(doc))
				return nil
			}
			fmt.Fprintf(out, "name:       %s\n", application.Name)
			fmt.Fprintf(out, "state:      %s\n", application.State)
			fmt.Fprintf(out, "allowStop:  %t\n", application.AllowStop)
			if application.InstallURL != nil {
				fmt.Fprintf(out, "installUrl: %s\n", application.InstallURL)
			}
			if application.InstanceURL != nil {
				fmt.Fprintf(out, "instance:   %s\n", application.InstanceURL)
			}
			if application.AdditionalData != nil {
				fmt.Fprintf(out, "additional: %s\n", application.AdditionalData)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asXML, "xml", false, "Print the application as a DIAL service document")
	return cmd
}

func newAppStartCommand() *cobra.Command {
	var data string
	var contentType string
	cmd := &cobra.Command{
		Use:   "start <application-url> <name>",
		Short: "Start an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := connect(args[0])
			if err != nil {
				return err
			}
			var content *entities.DialContent
			if cmd.Flags().Changed("data") {
				content = &entities.DialContent{Data: []byte(data), ContentType: contentType}
			}
			instanceURL, err := conn.StartApplication(cmd.Context(), args[1], content)
			if err != nil {
				return err
			}
			if instanceURL == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s started\n", args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s started: %s\n", args[1], instanceURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "Payload sent to the application")
	cmd.Flags().StringVar(&contentType, "content-type", "text/plain; charset=\"utf-8\"", "Content type of the payload")
	return cmd
}

func newAppStopCommand() *cobra.Command {
	var instance string
	cmd := &cobra.Command{
		Use:   "stop <application-url> [name]",
		Short: "Stop a running application (by name or by --instance url)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := connect(args[0])
			if err != nil {
				return err
			}
			if instance != "" {
				instanceURL, err := url.Parse(instance)
				if err != nil {
					return fmt.Errorf("invalid instance url %q: %w", instance, err)
				}
				return conn.StopInstance(cmd.Context(), instanceURL)
			}
			if len(args) < 2 {
				return fmt.Errorf("either an application name or --instance is required")
			}
			application, ok := conn.GetApplication(cmd.Context(), args[1])
			if !ok {
				return fmt.Errorf("application %s not found", args[1])
			}
			return conn.StopApplication(cmd.Context(), application)
		},
	}
	cmd.Flags().StringVar(&instance, "instance", "", "Instance url returned when the application was started")
	return cmd
}

func newAppHideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <application-url> <name>",
		Short: "Hide a running application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := connect(args[0])
			if err != nil {
				return err
			}
			application, ok := conn.GetApplication(cmd.Context(), args[1])
			if !ok {
				return fmt.Errorf("application %s not found", args[1])
			}
			return conn.HideApplication(cmd.Context(), application)
		},
	}
}

func newWakeCommand() *cobra.Command {
	var broadcast string
	cmd := &cobra.Command{
		Use:   "wake <mac>",
		Short: "Send a wake on lan magic packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.NewWakeOnLan(broadcast).Send(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Magic packet sent to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&broadcast, "broadcast", configs.WakeOnLanBroadcastAddr, "Broadcast address for the magic packet")
	return cmd
}
