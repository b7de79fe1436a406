package mail

import (
	"errors"
	"fmt"
	"petcoin/config"
	"petcoin/log"
	"strings"
	"sync"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/dm"

	eParser "github.com/go-errors/errors"
)

// sender is the part of the DirectMail client used here.
type sender interface {
	SingleSendMail(request *dm.SingleSendMailRequest) (*dm.SingleSendMailResponse, error)
}

var (
	mu       sync.Mutex
	dmClient sender
	enabled  bool
)

// Init inits aliyun mail config.
func Init(enableMail bool) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = enableMail
	if !enableMail {
		return nil
	}

	if err := config.LoadAliyunMailConfig(); err != nil {
		enabled = false
		return err
	}

	mailCfg := config.GetAliyunMailConfig()

	client, err := dm.NewClientWithAccessKey(
		mailCfg.Region,
		mailCfg.AccessKeyID,
		mailCfg.AccessKeySecret)
	if err != nil {
		enabled = false
		return err
	}

	dmClient = client
	return nil
}

// Enabled reports whether alerts are sent.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// AlertIfErr captures paniced error, logs it with stack and sends mail.
// Deferred at the top of long running goroutines.
func AlertIfErr() {
	if !Enabled() {
		return
	}

	if r := recover(); r != nil {
		var err error
		switch t := r.(type) {
		case string:
			err = errors.New(t)
		case error:
			err = t
		default:
			err = fmt.Errorf("unknown error: %v", t)
		}

		stack := eParser.Wrap(err, 2).ErrorStack()
		log.Errorln(stack)
		SendNotify("Error Detected", stack)
	}
}

// SendNotify sends mail to configured receivers.
func SendNotify(subject string, content string) {
	mu.Lock()
	client, on := dmClient, enabled
	mu.Unlock()

	if !on || client == nil {
		return
	}

	if content == "" {
		log.Printf("Mail content cannot be empty")
		return
	}

	if _, err := client.SingleSendMail(newRequest(subject, content)); err != nil {
		log.Errorf("Failed to send mail %q: %v", subject, err)
	}
}

func newRequest(subject string, content string) *dm.SingleSendMailRequest {
	mailCfg := config.GetAliyunMailConfig()

	req := dm.CreateSingleSendMailRequest()
	req.AccountName = mailCfg.AccountName
	req.ReplyToAddress = requests.NewBoolean(false)
	req.AddressType = requests.NewInteger(1)
	if label := config.GetLabel(); label != "" {
		req.FromAlias = fmt.Sprintf("[%s]-petcoin", label)
	} else {
		req.FromAlias = "petcoin"
	}
	req.Subject = subject
	req.TextBody = content
	req.ToAddress = strings.Join(mailCfg.Receiver, ",")
	return req
}
