package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Mailbox sweep, every five minutes
	CronScheduleSweep string `env:"CRON_SCHEDULE_SWEEP" envDefault:"0 */5 * * * *"`
}
