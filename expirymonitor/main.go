package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/credentials"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/datapersistence"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/graph"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/monitor"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/notifications"
	"github.com/WatchBeam/clock"
	homedir2 "k8s.io/client-go/util/homedir"
	//add auth plugins, required to use e.g. openid connect
	_ "k8s.io/client-go/plugin/pkg/client/auth"
)

func defaultNamespace() string {
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return ns
	}
	return "default"
}

func buildSender(backend string, session *graph.Session, smtpHost string, smtpPort int, smtpUser string) notifications.Sender {
	switch backend {
	case "graph":
		return &notifications.GraphSender{Session: session}
	case "smtp":
		if smtpHost == "" {
			log.Fatal("You must specify -smtphost when using the smtp mail backend")
		}
		return &notifications.SMTPSender{
			Host:     smtpHost,
			Port:     smtpPort,
			Username: smtpUser,
			Password: os.Getenv("SMTP_PASSWORD"),
		}
	default:
		log.Fatalf("'%s' is not a valid mail backend, expected 'graph' or 'smtp'", backend)
		return nil
	}
}

func main() {
	homedir := homedir2.HomeDir()
	kubeConfig := flag.String("kubeconfig", path.Join(homedir, ".kube", "config"), "kubeconfig file (only used if out of cluster)")
	secretNamespace := flag.String("namespace", defaultNamespace(), "namespace of the credential secret")
	secretName := flag.String("secret", "mdm-monitor-credentials", "name of the secret holding the app credential")
	notificationTimespan := flag.Int("timespan", 30, "warn when an artifact expires within this many days")
	mailFrom := flag.String("mailfrom", "", "sender address for notification mail")
	mailTo := flag.String("mailto", "", "recipient address for notification mail (empty suppresses notifications)")
	clientName := flag.String("client", "unknown client", "client display name substituted into notifications")
	mailBackend := flag.String("mailbackend", "graph", "mail backend to use, 'graph' or 'smtp'")
	smtpHost := flag.String("smtphost", "", "SMTP relay host (smtp backend only)")
	smtpPort := flag.Int("smtpport", 25, "SMTP relay port (smtp backend only)")
	smtpUser := flag.String("smtpuser", "", "SMTP username, password is taken from SMTP_PASSWORD (smtp backend only)")
	outputPath := flag.String("out", "", "directory to write a JSON run report into (empty disables the report)")
	flag.Parse()

	if *notificationTimespan < 0 {
		log.Fatalf("-timespan must not be negative, got %d", *notificationTimespan)
	}

	clientset := credentials.GetClientset(*kubeConfig)

	cred, credErr := credentials.LoadCredential(context.Background(), clientset, *secretNamespace, *secretName)
	if credErr != nil {
		log.Fatalf("Could not load the app credential: %s", credErr)
	}

	session, authErr := graph.Authenticate(cred)
	if authErr != nil {
		log.Fatalf("Could not authenticate to the management tenant, nothing was evaluated: %s", authErr)
	}

	sender := buildSender(*mailBackend, session, *smtpHost, *smtpPort, *smtpUser)

	results := monitor.Run(session, sender, clock.C, monitor.Config{
		ThresholdDays: *notificationTimespan,
		MailFrom:      *mailFrom,
		MailTo:        *mailTo,
		ClientName:    *clientName,
	})

	if *outputPath != "" {
		report := datapersistence.BuildReport(*clientName, clock.C.Now(), results)
		if writeErr := datapersistence.WriteData(*outputPath, report); writeErr != nil {
			log.Fatalf("ERROR Could not write out final report: %s", writeErr)
		}
	}

	log.Print("All done.")
}
