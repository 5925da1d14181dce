package config

const SERVER_YML = `
glucowatch:
  privateKeyPem: "dev/config/private-key.pem"
  appUrl: "http://localhost:3000"
  cron:
    timeZone: "America/Toronto"
  listener:
    port: 3000

sqlite:
  passPhrase: passphrase

smtp:
  host: "localhost"
  port: 1025
  username: glucowatch
  password: glucowatch
  from: "alerts@glucowatch.dev"

google:
  storage:
    bucket: "glucowatch"
    prefix: "glucowatch-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: false
  applicationCredentials:

twilio:
  accountSid:
  authToken:
  messagingServiceSid:
`
