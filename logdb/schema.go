// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq packs the ledger sequence and the index inside it, see sequence.go.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	callID BLOB(32),
	ledgerTime INTEGER,
	origin BLOB(20),
	address BLOB(20),
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	data BLOB
);

CREATE INDEX IF NOT EXISTS eventTimeIndex ON event(ledgerTime);
CREATE INDEX IF NOT EXISTS eventAddressIndex ON event(address);
CREATE INDEX IF NOT EXISTS eventTopic0Index ON event(topic0);
CREATE INDEX IF NOT EXISTS eventTopic1Index ON event(topic1);
CREATE INDEX IF NOT EXISTS eventTopic2Index ON event(topic2);
CREATE INDEX IF NOT EXISTS eventTopic3Index ON event(topic3);
`

const transferTableSchema = `
CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER PRIMARY KEY,
	callID BLOB(32),
	ledgerTime INTEGER,
	origin BLOB(20),
	token BLOB(20),
	sender BLOB(20),
	recipient BLOB(20),
	amount BLOB(32)
);

CREATE INDEX IF NOT EXISTS transferTimeIndex ON transfer(ledgerTime);
CREATE INDEX IF NOT EXISTS transferOriginIndex ON transfer(origin);
CREATE INDEX IF NOT EXISTS transferTokenIndex ON transfer(token);
CREATE INDEX IF NOT EXISTS transferSenderIndex ON transfer(sender);
CREATE INDEX IF NOT EXISTS transferRecipientIndex ON transfer(recipient);
`
