package reconciler

import (
	"fmt"

	"github.com/google/uuid"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:mpr-recon:reconciliation"))

func transactionUUID(source string, index int, transactionID string) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s:%d:%s", source, index, transactionID))).String()
}

func anomalyUUID(anomalyType string, seq int, transactionID string) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s:%d:%s", anomalyType, seq, transactionID))).String()
}
