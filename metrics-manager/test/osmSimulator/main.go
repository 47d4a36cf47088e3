package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/test/osmSimulator/app"
)

func main() {
	flag.Usage = printUsage

	// Get the commandline arguments
	c := &app.SimulatorConfig{}

	flag.IntVar(&c.NsNum, "ns_num", 5, "The number of running network services, if not set, default to 5")
	flag.IntVar(&c.MembersPerNs, "members_per_ns", 2, "The number of VNFs per network service, if not set, default to 2")
	flag.IntVar(&c.VdusPerMember, "vdus_per_member", 3, "The number of VDUs per VNF, if not set, default to 3")
	flag.StringVar(&c.Username, "username", "admin", "NBI user, if not set, default to admin")
	flag.StringVar(&c.Password, "password", "admin", "NBI password, if not set, default to admin")
	flag.IntVar(&c.TokenMaxUses, "token_max_uses", 20, "Authorized NBI requests per token, 0 never expires tokens")
	flag.Float64Var(&c.PredictorFailureRate, "predictor_failure_rate", 0, "Share of predictor requests answered with 503")
	flag.StringVar(&c.MasterPort, "master_port", "9119", "Service port, if not set, default to 9119")

	if !flag.Parsed() {
		klog.InitFlags(nil)
		flag.Parse()
	}

	// Keep a more frequent flush frequency as 1 second
	klog.StartFlushDaemon(time.Second * 1)

	defer klog.Flush()
	klog.Infof("OSM simulator config / network services: (%v)", c.NsNum)
	klog.Infof("OSM simulator config / members per network service: (%v)", c.MembersPerNs)
	klog.Infof("OSM simulator config / VDUs per member: (%v)", c.VdusPerMember)
	klog.Infof("OSM simulator config / token max uses: (%v)", c.TokenMaxUses)
	klog.Infof("OSM simulator config / predictor failure rate: (%v)", c.PredictorFailureRate)

	// Run simulator REST API server
	if err := app.Run(c); err != nil {
		klog.Errorf("Error: %v\n", err)
	}

	klog.Infof("Exiting OSM simulator")
}

func printUsage() {
	fmt.Println("\nUsage: OSM Simulator (NBI, metrics store and predictor)")
	fmt.Println("\n       options: --ns_num=<n> --members_per_ns=<n> --vdus_per_member=<n> --token_max_uses=<n> --predictor_failure_rate=<0..1> --master_port=<port>")
	fmt.Println("\n       collector: --prometheus_ip=localhost --prometheus_port=<port> --nbi_socket_addr=http://localhost:<port> --nbi_authentication_url=http://localhost:<port>/osm/admin/v1/tokens --predictor_url=http://localhost:<port>/api/metrics/predict/")
	fmt.Println()

	os.Exit(0)
}
