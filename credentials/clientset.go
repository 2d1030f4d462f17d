package credentials

import (
	"fmt"
	"log"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// GetClientset
/**
Builds a Kubernetes clientset for reading the credential Secret.  In-cluster
configuration via the pod service account is tried first; if that is not
available the given kubeconfig path is used instead.  Panics if neither source
yields a configuration, since the job cannot do anything without cluster access.
*/
func GetClientset(kubeconfigPath string) *kubernetes.Clientset {
	clusterConfig, configErr := rest.InClusterConfig()
	if configErr == nil {
		return kubernetes.NewForConfigOrDie(clusterConfig)
	}
	log.Printf("INFO Could not get in-cluster configuration: %s, falling back to out-of-cluster", configErr)
	localConfig, localErr := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if localErr == nil {
		return kubernetes.NewForConfigOrDie(localConfig)
	}

	panic(fmt.Sprintf("ERROR Could not get either in-cluster configuration or out-of-cluster: %s", localErr))
}
