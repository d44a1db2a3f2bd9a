package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion  string = "v1.2.0"
	ProgBaseName string = "cand"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultBinaryPath  string = "/usr/local/bin/cand"
	DefaultConfigPath  string = "/etc/cand.json"
	DefaultServicePath string = "/etc/systemd/system/cand.service"
	DefaultAAProfName  string = "cand"
	DefaultInterface   string = "can0"
	AnyInterface       string = "any" // Receive from every CAN interface
	DefaultOutputDir   string = "/candump"
	OutputFilePrefix   string = "candump-"
	OutputFileSuffix   string = ".bin"
	OutputTimeLayout   string = "2006-01-02_150405"
	DigestFileSuffix   string = ".b2sum"

	// Flush policy
	PeriodicFlushGapSec int64 = 2 // flush once record seconds advance more than this past the last flush

	// Socket
	CANFrameSize   int    = 16  // sizeof(struct can_frame)
	MaxCANFilters  int    = 512 // CAN_RAW_FILTER_MAX
	FilterProgName string = "cand_id_filter"

	// Receive buffer auto sizing
	AutoReceiveBuffer   int = -1
	MinAutoReceiveBytes int = 256 * 1024
	MaxAutoReceiveBytes int = 8 * 1024 * 1024

	// Timeout values
	ShutdownTimeout      time.Duration = 5 * time.Second
	AlertSendTimeout     time.Duration = 3 * time.Second
	AlertQueueSize       int           = 64
	StatusNotifyInterval time.Duration = 30 * time.Second

	// Metric HTTP server
	DefaultMetricPort     int           = 28514
	DefaultMetricInterval time.Duration = 10 * time.Second
	DefaultMetricMaxAge   time.Duration = 1 * time.Hour
	HTTPListenAddr        string        = "localhost" // Metric queries only exposed to local machine
	HTTPReadTimeout       time.Duration = 30 * time.Second
	HTTPWriteTimeout      time.Duration = 10 * time.Second
	HTTPIdleTimeout       time.Duration = 180 * time.Second
	DataPath              string        = "/data/"
	DiscoveryPath         string        = "/discover/"
	AggregationPath       string        = "/aggregation/"

	// Metric aggregation types
	MetricSum string = "sum"
	MetricMin string = "min"
	MetricMax string = "max"
	MetricAvg string = "avg"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSCapture   string = "Capture"
	NSSocket    string = "Socket"
	NSSink      string = "Sink"
	NSFilter    string = "Filter"
	NSAlert     string = "Alert"
	NSLifecycle string = "Lifecycle"
)
