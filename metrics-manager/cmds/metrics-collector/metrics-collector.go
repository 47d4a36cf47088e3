package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/cmds/metrics-collector/app"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/aggregrator"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/distributor"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/service-api/endpoints"
)

func main() {
	flag.Usage = printUsage

	// get the commandline arguments, defaulting to the deployment environment
	c := &app.Config{}

	var granularitySeconds int
	flag.StringVar(&c.PrometheusIp, "prometheus_ip", envOrDefault("PROMETHEUS_IP", "localhost"), "Metrics store IP address")
	flag.StringVar(&c.PrometheusPort, "prometheus_port", envOrDefault("PROMETHEUS_PORT", "9091"), "Metrics store port")
	flag.StringVar(&c.CpuMetricName, "cpu_metric_name", envOrDefault("CPU_METRIC_NAME", aggregrator.DefaultCpuMetric), "Cpu utilization metric or query")
	flag.IntVar(&granularitySeconds, "granularity", envIntOrDefault("DEFAULT_GRANULARITY", 30), "Polling interval in seconds")
	flag.StringVar(&c.NbiAuthenticationUrl, "nbi_authentication_url", os.Getenv("NBI_AUTHENTICATION_URL"), "NBI token endpoint, e.g. https://osm:9999/osm/admin/v1/tokens")
	flag.StringVar(&c.NbiSocketAddr, "nbi_socket_addr", os.Getenv("NBI_SOCKET_ADDR"), "NBI base address, e.g. https://osm:9999")
	flag.StringVar(&c.NbiUsername, "nbi_username", envOrDefault("NBI_USERNAME", "admin"), "NBI user")
	flag.StringVar(&c.NbiPassword, "nbi_password", envOrDefault("NBI_PASSWORD", "admin"), "NBI password")
	flag.BoolVar(&c.InsecureSkipVerify, "insecure_skip_verify", true, "Skip verification of the NBI certificate")
	flag.StringVar(&c.PredictorUrl, "predictor_url", envOrDefault("PREDICTOR_URL", distributor.DefaultPredictorUrl), "Predictor metric ingestion url")
	flag.StringVar(&c.RedisAddr, "redis_addr", os.Getenv("REDIS_ADDR"), "Redis address for the descriptor store, disabled if empty")
	flag.IntVar(&c.RedisDb, "redis_db", 0, "Redis database of the descriptor store")
	flag.DurationVar(&c.RequestTimeout, "request_timeout", 30*time.Second, "Timeout of every outbound http request")
	flag.IntVar(&c.MaxDeliveries, "max_deliveries", distributor.DefaultMaxDeliveries, "Concurrent predictor deliveries")
	flag.IntVar(&c.DeliveryQueueSize, "delivery_queue", distributor.DefaultQueueSize, "Results waiting for delivery before new ones are dropped")
	flag.Float64Var(&c.DeliveryRate, "delivery_rate", 0, "Predictor deliveries per second, 0 for unlimited")
	flag.StringVar(&c.StatusIp, "status_ip", "0.0.0.0", "Status server IP address")
	flag.StringVar(&c.StatusPort, "status_port", endpoints.DefaultStatusPort, "Status server port")
	flag.DurationVar(&c.LatencyReportInterval, "latency_report_interval", 5*time.Minute, "Interval of the delivery latency report, 0 to disable")

	if !flag.Parsed() {
		klog.InitFlags(nil)
		flag.Parse()
	}

	c.Granularity = time.Duration(granularitySeconds) * time.Second

	// keep a more frequent flush frequency as 1 second
	klog.StartFlushDaemon(time.Second * 1)

	defer klog.Flush()

	if err := c.Validate(); err != nil {
		klog.Errorf("invalid configuration: %v", err)
		klog.Flush()
		os.Exit(1)
	}

	klog.Infof("Collector config: %v", c)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	klog.Infof("Starting metrics collector")

	if err := app.Run(ctx, c); err != nil {
		klog.Errorf("error: %v\n", err)
	}

	klog.Infof("Exiting metrics collector")
}

func envOrDefault(name, defaultValue string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return defaultValue
}

func envIntOrDefault(name string, defaultValue int) int {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: %v\n", name, v, err)
		return defaultValue
	}
	return n
}

// function to print the usage info for the metrics collector
func printUsage() {
	fmt.Println("Usage: ")

	// klog will use commandline log parameters with nil as named a few below:
	// --alsologtostderr=true  --logtostderr=false --log_file="/tmp/metrics_collector.log"
	fmt.Println("logging options: --alsologtostderr=true  --logtostderr=false --log_file=/tmp/metrics_collector.log ")
	fmt.Println("metrics store options: --prometheus_ip=<address> --prometheus_port=<port> --granularity=<seconds> --cpu_metric_name=<metric>")
	fmt.Println("NBI options: --nbi_authentication_url=<url> --nbi_socket_addr=<url> --nbi_username=<user> --nbi_password=<password> --insecure_skip_verify=<bool>")
	fmt.Println("delivery options: --predictor_url=<url> --max_deliveries=<n> --delivery_queue=<n> --delivery_rate=<per second> --request_timeout=<duration>")
	fmt.Println("status options: --status_ip=<address> --status_port=<port> --latency_report_interval=<duration> --redis_addr=<host:port>")
	fmt.Println("Every option defaults to its environment variable when set: PROMETHEUS_IP, PROMETHEUS_PORT, DEFAULT_GRANULARITY, NBI_AUTHENTICATION_URL, NBI_SOCKET_ADDR, NBI_USERNAME, NBI_PASSWORD, PREDICTOR_URL, CPU_METRIC_NAME, REDIS_ADDR")

	os.Exit(0)
}
