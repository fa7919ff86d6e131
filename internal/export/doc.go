// Package export renders query results as JSON or XML documents and writes
// them to a sink.
//
// Documents are always rendered into memory first. A sink only ever sees a
// complete document, and FileSink replaces its target with a rename, so a
// failed export never leaves a truncated file behind.
//
// JSON output is an array of objects whose keys follow the column order:
//
//	[
//	    {
//	        "room_id": 1,
//	        "room_name": "101",
//	        "student_count": 2
//	    }
//	]
//
// XML output wraps one <row> element per row in a <results> root that names
// the query:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<results query="room-occupancy">
//	  <row>
//	    <room_id>1</room_id>
//	    <room_name>101</room_name>
//	    <student_count>2</student_count>
//	  </row>
//	</results>
package export
