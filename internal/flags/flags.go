package flags

import (
	"github.com/urfave/cli/v3"
)

const EnvVarPrefix = "CATALYST"

// EnvFileVar names the .env file loaded before flags are parsed, so it can
// supply values for every other variable.
const EnvFileVar = EnvVarPrefix + "_ENV_FILE"

func prefixEnvVar(name string) cli.ValueSourceChain {
	return cli.EnvVars(EnvVarPrefix + "_" + name)
}

var (
	Config = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   ".catalyst.toml",
		Sources: prefixEnvVar("CONFIG"),
		Usage:   "Path to the configuration file",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Sources: prefixEnvVar("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn or error",
	}
)

// Run flags
var (
	Deadline = &cli.DurationFlag{
		Name:    "deadline",
		Value:   0,
		Sources: prefixEnvVar("DEADLINE"),
		Usage:   "Overall deadline for the run (e.g. '30s'). 0 means none",
	}
	InProcess = &cli.BoolFlag{
		Name:    "in-process",
		Value:   false,
		Sources: prefixEnvVar("IN_PROCESS"),
		Usage:   "Run runners as goroutines instead of separate processes",
	}
	Summary = &cli.BoolFlag{
		Name:    "summary",
		Value:   false,
		Sources: prefixEnvVar("SUMMARY"),
		Usage:   "Print a summary table after the results",
	}
	Report = &cli.StringFlag{
		Name:    "report",
		Value:   "",
		Sources: prefixEnvVar("REPORT"),
		Usage:   "Write a JSON report of the run to this file",
	}
	NatsURL = &cli.StringFlag{
		Name:    "nats-url",
		Value:   "",
		Sources: prefixEnvVar("NATS_URL"),
		Usage:   "Stream results to this NATS server",
	}
	NatsSubject = &cli.StringFlag{
		Name:    "nats-subject",
		Value:   "catalyst.results",
		Sources: prefixEnvVar("NATS_SUBJECT"),
		Usage:   "NATS subject results are published on",
	}
	SqsQueueURL = &cli.StringFlag{
		Name:    "sqs-queue-url",
		Value:   "",
		Sources: prefixEnvVar("SQS_QUEUE_URL"),
		Usage:   "Queue results on this SQS queue",
	}
	AwsRegion = &cli.StringFlag{
		Name:    "aws-region",
		Value:   "eu-central-1",
		Sources: prefixEnvVar("AWS_REGION"),
		Usage:   "AWS region of the SQS queue",
	}
)

var GlobalFlags = []cli.Flag{
	Config,
	LogLevel,
}

var RunFlags = []cli.Flag{
	Deadline,
	InProcess,
	Summary,
	Report,
	NatsURL,
	NatsSubject,
	SqsQueueURL,
	AwsRegion,
}
